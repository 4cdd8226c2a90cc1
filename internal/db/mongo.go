package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Collections struct {
	Database         *mongo.Database
	Countries        *mongo.Collection
	VisaRequirements *mongo.Collection
	Resources        *mongo.Collection
	NewsEvents       *mongo.Collection
	FormSubmissions  *mongo.Collection
	Statistics       *mongo.Collection
	AdminUsers       *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Database:         db,
		Countries:        db.Collection("countries"),
		VisaRequirements: db.Collection("visa_requirements"),
		Resources:        db.Collection("resources"),
		NewsEvents:       db.Collection("news_events"),
		FormSubmissions:  db.Collection("form_submissions"),
		Statistics:       db.Collection("statistics"),
		AdminUsers:       db.Collection("admin_users"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{cols.Countries, []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{cols.VisaRequirements, []mongo.IndexModel{
			{Keys: bson.D{{Key: "countryName", Value: 1}}},
		}},
		{cols.Resources, []mongo.IndexModel{
			{Keys: bson.D{{Key: "fileId", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{cols.NewsEvents, []mongo.IndexModel{
			{Keys: bson.D{{Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
		}},
		{cols.FormSubmissions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{cols.Statistics, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{cols.AdminUsers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}

	for _, ix := range indexes {
		if _, err := ix.col.Indexes().CreateMany(indexTimeout, ix.models); err != nil {
			return err
		}
	}
	return nil
}
