package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository[T any] struct {
	col  *mongo.Collection
	sort bson.D
}

// NewMongoRepository binds a collection. sort orders List and Find results.
func NewMongoRepository[T any](col *mongo.Collection, sort bson.D) *MongoRepository[T] {
	return &MongoRepository[T]{col: col, sort: sort}
}

func (r *MongoRepository[T]) List(ctx context.Context, filter bson.M, page Page) (List[T], error) {
	page = page.Normalize()
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find().SetLimit(page.Limit).SetSkip(page.Offset)
	if len(r.sort) > 0 {
		opts.SetSort(r.sort)
	}

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return List[T]{}, err
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return List[T]{}, err
	}
	return List[T]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (r *MongoRepository[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if len(r.sort) > 0 {
		opts.SetSort(r.sort)
	}
	return r.find(ctx, filter, opts)
}

func (r *MongoRepository[T]) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository[T]) Get(ctx context.Context, id string) (T, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	var item T
	if err := r.col.FindOne(ctx, filter).Decode(&item); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return item, nil
}

func (r *MongoRepository[T]) Create(ctx context.Context, doc T) error {
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *MongoRepository[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	return r.UpdateOne(ctx, bson.M{"_id": id}, set)
}

func (r *MongoRepository[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)

	var updated T
	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return updated, nil
}

func (r *MongoRepository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
