package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert returns the generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		coll := NewMongoCollection(mt.Coll)

		res, err := coll.Insert(ctx, &testDoc{Email: "a@x.com"})
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		_, err = primitive.ObjectIDFromHex(res.InsertedID)
		assert.NoError(mt, err)
	})

	mt.Run("duplicate key maps to ErrDuplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))
		coll := NewMongoCollection(mt.Coll)

		_, err := coll.Insert(ctx, &testDoc{Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("find by id decodes the document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "a@x.com"},
			{Key: "rank", Value: 4},
		}))
		coll := NewMongoCollection(mt.Coll)

		var got testDoc
		require.NoError(mt, coll.FindByID(ctx, id.Hex(), &got))
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, "a@x.com", got.Email)
		assert.Equal(mt, 4, got.Rank)
	})

	mt.Run("find by id with no match is ErrNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))
		coll := NewMongoCollection(mt.Coll)

		var got testDoc
		err := coll.FindByID(ctx, primitive.NewObjectID().Hex(), &got)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		coll := NewMongoCollection(mt.Coll)

		var got testDoc
		assert.ErrorIs(mt, coll.FindByID(ctx, "nope", &got), ErrInvalidID)
		_, err := coll.UpdateByID(ctx, "nope", Fields{"rank": 1})
		assert.ErrorIs(mt, err, ErrInvalidID)
		_, err = coll.DeleteByID(ctx, "nope")
		assert.ErrorIs(mt, err, ErrInvalidID)
	})

	mt.Run("find many drains every batch", func(mt *mtest.T) {
		ns := namespace(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "rank", Value: 3}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "rank", Value: 2}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "rank", Value: 1}},
			),
		)
		coll := NewMongoCollection(mt.Coll)

		var docs []testDoc
		require.NoError(mt, coll.FindMany(ctx, nil, &FindOptions{SortKey: "rank", Descending: true, Limit: 6}, &docs))
		require.Len(mt, docs, 3)
		assert.Equal(mt, 3, docs[0].Rank)
		assert.Equal(mt, 1, docs[2].Rank)
	})

	mt.Run("update reports matched and modified counts", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})
		coll := NewMongoCollection(mt.Coll)

		res, err := coll.UpdateByID(ctx, primitive.NewObjectID().Hex(), Fields{"rank": 9})
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		assert.Equal(mt, int64(1), res.MatchedCount)
		assert.Equal(mt, int64(1), res.ModifiedCount)
		assert.Nil(mt, res.UpsertedID)
	})

	mt.Run("empty update is rejected", func(mt *mtest.T) {
		coll := NewMongoCollection(mt.Coll)

		_, err := coll.UpdateByID(ctx, primitive.NewObjectID().Hex(), Fields{})
		assert.ErrorIs(mt, err, ErrEmptyUpdate)
	})

	mt.Run("delete reports the deleted count", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})
		coll := NewMongoCollection(mt.Coll)

		res, err := coll.DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		assert.Equal(mt, int64(0), res.DeletedCount)
	})

	mt.Run("ensure unique creates an index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		coll := NewMongoCollection(mt.Coll)

		assert.NoError(mt, coll.EnsureUnique(ctx, "userEmail", "bookId"))
	})

	mt.Run("server errors propagate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))
		coll := NewMongoCollection(mt.Coll)

		var docs []testDoc
		err := coll.FindMany(ctx, nil, nil, &docs)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}
