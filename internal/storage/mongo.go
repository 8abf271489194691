package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/rentfleet/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

const snapshotID = "fleet_state"

type snapshotDoc struct {
	ID    string            `bson:"_id"`
	State models.FleetState `bson:"state"`
}

// MongoBackend stores the fleet snapshot as a single upserted document.
type MongoBackend struct {
	Collection *mongo.Collection
}

// NewMongoBackend wraps a collection as a snapshot backend.
func NewMongoBackend(coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{Collection: coll}
}

// Load reads the snapshot document. ErrNotFound when none has been saved.
func (b *MongoBackend) Load(ctx context.Context) (*models.FleetState, error) {
	if b.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var doc snapshotDoc
	err := b.Collection.FindOne(ctx, bson.M{"_id": snapshotID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load fleet state: %w", err)
	}
	doc.State.Normalize()
	return &doc.State, nil
}

// Save upserts the snapshot document. A document over the server's size limit
// maps to ErrQuotaExceeded so the store can degrade instead of failing.
func (b *MongoBackend) Save(ctx context.Context, state *models.FleetState) error {
	if b.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	doc := snapshotDoc{ID: snapshotID, State: *state}
	_, err := b.Collection.ReplaceOne(ctx, bson.M{"_id": snapshotID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if strings.Contains(err.Error(), "too large") {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("save fleet state: %w", err)
	}
	return nil
}
