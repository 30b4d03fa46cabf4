package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// mongoDocument stores the JSON payload as a string so documents round-trip
// byte for byte with the other backends.
type mongoDocument struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore maps each collection onto a Mongo collection with _id = key.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB", zap.String("database", database))

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Create(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("create", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("create", collection, key, err)
	}

	doc := mongoDocument{ID: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return wrap("create", collection, key, ErrExists)
		}
		return wrap("create", collection, key, err)
	}
	return nil
}

func (s *MongoStore) Read(ctx context.Context, collection, key string, out any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("read", collection, key, err)
	}

	var doc mongoDocument
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return wrap("read", collection, key, ErrNotFound)
		}
		return wrap("read", collection, key, err)
	}

	if err := json.Unmarshal([]byte(doc.Data), out); err != nil {
		return wrap("read", collection, key, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("update", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("update", collection, key, err)
	}

	doc := mongoDocument{ID: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	result, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": key}, doc)
	if err != nil {
		return wrap("update", collection, key, err)
	}
	if result.MatchedCount == 0 {
		return wrap("update", collection, key, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, key string) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("delete", collection, key, err)
	}

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return wrap("delete", collection, key, err)
	}
	if result.DeletedCount == 0 {
		return wrap("delete", collection, key, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	if err := ValidateKey(collection, key); err != nil {
		return false, wrap("exists", collection, key, err)
	}

	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrap("exists", collection, key, err)
	}
	return n > 0, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
