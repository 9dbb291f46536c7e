package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInternal is a struct that contains a MongoDB client
type MongoInternal struct {
	client   *mongo.Client
	database string
}

// NewMongoInternal connects to uri and pings the admin database
func NewMongoInternal(ctx context.Context, uri, database string) (*MongoInternal, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		database = "viksitkanpur"
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoInternal{
		client:   client,
		database: database,
	}, nil
}

// Ping checks the connection
func (m *MongoInternal) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client
func (m *MongoInternal) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoInternal) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}
