package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 30 * time.Second

// DatabaseName picks the database from the URI path, falling back when the
// URI names none.
func DatabaseName(mongoURI, fallback string) (string, error) {
	uri, err := url.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("error parsing MongoDB URI: %w", err)
	}
	if name := strings.TrimPrefix(uri.Path, "/"); name != "" {
		return name, nil
	}
	return fallback, nil
}

func ConnectToDB(ctx context.Context, mongoURI, fallbackDB string) (*mongo.Database, error) {
	dbName, err := DatabaseName(mongoURI, fallbackDB)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	return client.Database(dbName), nil
}

// CreateSessionIndex indexes players by the session they last joined with.
// Players that never joined have no session_id and stay out of the index.
func CreateSessionIndex(ctx context.Context, db *mongo.Database, collectionName string) error {
	collection := db.Collection(collectionName)

	indexModel := mongo.IndexModel{
		Keys:    bson.M{"session_id": 1},
		Options: options.Index().SetSparse(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("error creating session index on %s: %w", collectionName, err)
	}
	return nil
}

func ConnectToRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
