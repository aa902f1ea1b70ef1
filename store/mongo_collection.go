package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCollection struct {
	coll *mongo.Collection
}

// NewMongoCollection adapts a driver collection to the Collection contract.
func NewMongoCollection(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

func (c *mongoCollection) Insert(ctx context.Context, doc any) (*InsertResult, error) {
	res, err := c.coll.InsertOne(ctx, doc, options.InsertOne())
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

func (c *mongoCollection) FindByID(ctx context.Context, id string, out any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return c.FindOne(ctx, Filter{"_id": oid}, out)
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	err := c.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (c *mongoCollection) FindMany(ctx context.Context, filter Filter, opts *FindOptions, out any) error {
	if filter == nil {
		filter = Filter{}
	}
	findOpts := options.Find()
	if opts != nil {
		if opts.SortKey != "" {
			order := 1
			if opts.Descending {
				order = -1
			}
			findOpts.SetSort(bson.D{{Key: opts.SortKey, Value: order}})
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}
	cur, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (c *mongoCollection) UpdateByID(ctx context.Context, id string, fields Fields) (*UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	out := &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		s := idString(res.UpsertedID)
		out.UpsertedID = &s
	}
	return out, nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) (*DeleteResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (c *mongoCollection) EnsureUnique(ctx context.Context, fields ...string) error {
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	idx := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true),
	}
	_, err := c.coll.Indexes().CreateOne(ctx, idx)
	return err
}
