package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	IssuesCollection  = "all-issues"
	UsersCollection   = "users"
	BooksCollection   = "books"
	GenresCollection  = "genres"
	LibraryCollection = "library"
	ReviewsCollection = "reviews"
)

type backend interface {
	collection(name string) Collection
	ping(ctx context.Context) error
	disconnect(ctx context.Context) error
}

// DB groups the collections used by the service. It is created once at startup
// and handed to every handler that needs it.
type DB struct {
	backend backend
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{backend: &mongoBackend{client: client, database: client.Database(dbName)}}, nil
}

func (db *DB) Collection(name string) Collection {
	return db.backend.collection(name)
}

func (db *DB) Issues() Collection  { return db.Collection(IssuesCollection) }
func (db *DB) Users() Collection   { return db.Collection(UsersCollection) }
func (db *DB) Books() Collection   { return db.Collection(BooksCollection) }
func (db *DB) Genres() Collection  { return db.Collection(GenresCollection) }
func (db *DB) Library() Collection { return db.Collection(LibraryCollection) }
func (db *DB) Reviews() Collection { return db.Collection(ReviewsCollection) }

// EnsureIndexes creates the uniqueness constraints the service relies on:
// one user per email and one library entry per (userEmail, bookId).
func (db *DB) EnsureIndexes(ctx context.Context) error {
	if err := db.Users().EnsureUnique(ctx, "email"); err != nil {
		return err
	}
	return db.Library().EnsureUnique(ctx, "userEmail", "bookId")
}

func (db *DB) Ping(ctx context.Context) error {
	return db.backend.ping(ctx)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.backend.disconnect(ctx)
}

type mongoBackend struct {
	client   *mongo.Client
	database *mongo.Database
}

func (b *mongoBackend) collection(name string) Collection {
	return NewMongoCollection(b.database.Collection(name))
}

func (b *mongoBackend) ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *mongoBackend) disconnect(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
