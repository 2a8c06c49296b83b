package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoStore persists blobs as binary documents in a MongoDB collection.
// References carry the inserted object id, e.g. "mongo://media/<hex>.png".
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		collection = "media"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (ms *MongoStore) SaveImage(ctx context.Context, b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return ms.insert(ctx, "image/png", ".png", raw)
}

func (ms *MongoStore) SaveVideo(ctx context.Context, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return ms.insert(ctx, "video/mp4", ".mp4", raw)
}

func (ms *MongoStore) insert(ctx context.Context, contentType, ext string, raw []byte) (string, error) {
	if ms == nil || ms.collection == nil {
		return "", errors.New("mongo store is not configured")
	}
	res, err := ms.collection.InsertOne(ctx, bson.M{
		"content_type": contentType,
		"data":         primitive.Binary{Data: raw},
		"size":         len(raw),
		"created_at":   time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("mongo insert returned unexpected id type")
	}
	return fmt.Sprintf("mongo://%s/%s%s", ms.collection.Name(), oid.Hex(), ext), nil
}

// CreateSchema adds the index used when listing recent media.
func (ms *MongoStore) CreateSchema(ctx context.Context) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	_, err := ms.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at"),
	})
	return err
}

// Close releases the underlying MongoDB client.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}
