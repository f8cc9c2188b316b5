package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo collection names shared with the mongo store.
const (
	MongoAssets        = "assets"
	MongoCollaborators = "collaborators"
	MongoHistory       = "asset_history"
)

// ConnectMongo connects to uri, verifies the primary with a ping and
// returns the client and the named database.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// MongoIndexes lists the indexes EnsureMongoIndexes creates, per collection.
// Asset ids live in _id, so their uniqueness needs no extra index.
var MongoIndexes = map[string][]mongo.IndexModel{
	MongoAssets: {
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "area", Value: 1}}},
		{Keys: bson.D{{Key: "equipmentType", Value: 1}}},
		{Keys: bson.D{{Key: "assignedUserName", Value: 1}}},
	},
	MongoCollaborators: {
		{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fullName", Value: 1}}},
	},
	MongoHistory: {
		{Keys: bson.D{{Key: "assetId", Value: 1}, {Key: "timestamp", Value: -1}}},
	},
}

// EnsureMongoIndexes creates the store's indexes. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	for coll, models := range MongoIndexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
