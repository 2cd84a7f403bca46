// Package dbmongo keeps post images in a MongoDB GridFS bucket.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"yatube/internal/config"
)

const (
	defaultBucket  = "post_images"
	connectTimeout = 10 * time.Second

	// post images rarely exceed a few megabytes; 1 MiB chunks keep the
	// number of chunk documents per image small
	chunkSizeBytes = 1 << 20
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
}

// Connect dials MongoDB and opens the image bucket. Without a deadline on ctx
// the dial is bounded by connectTimeout.
func Connect(ctx context.Context, c *config.Config) (*MongoClient, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(c.GetMongoURI()).
		SetAppName("yatube"))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	name := c.MongoDB.Bucket
	if name == "" {
		name = defaultBucket
	}

	database := client.Database(c.MongoDB.Database)
	bucket, err := gridfs.NewBucket(database, options.GridFSBucket().
		SetName(name).
		SetChunkSizeBytes(chunkSizeBytes))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("open gridfs bucket %q: %w", name, err)
	}

	return &MongoClient{
		Client:   client,
		Database: database,
		GridFS:   bucket,
	}, nil
}

// PingContext lets the client stand in wherever a database pinger is expected.
func (mc *MongoClient) PingContext(ctx context.Context) error {
	return mc.Client.Ping(ctx, readpref.Primary())
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
