package database

import (
	"context"
	"time"

	"sosmed/pkg/logger"
	"sosmed/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Connect opens the MongoDB client and waits for the primary to answer.
func Connect(uri string) *mongo.Client {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		logger.Sugar.Fatalf("Failed to open database connection: %v", err)
	}

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx, readpref.Primary())
		cancel()
		if err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return client
		}
		logger.Sugar.Infof("Database connection failed, retrying in 2s... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	logger.Sugar.Fatal("Could not connect to database after retries. Check MONGO_URI and that the server is reachable.")
	return nil
}

// EnsureIndexes creates the unique username index and the posts-by-author index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(store.UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to create users.username index: %v", err)
		return err
	}
	_, err = db.Collection(store.PostsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to create posts.userId index: %v", err)
	}
	return err
}
