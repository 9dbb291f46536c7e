package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"viksitkanpur/internal/pipeline"
)

const snapshotCollection = "snapshots"

// snapshotDocument stores the snapshot body as its JSON form so field names
// and decimal budgets survive the round trip
type snapshotDocument struct {
	SessionID   string    `bson:"session_id"`
	UserID      string    `bson:"user_id"`
	Role        string    `bson:"role"`
	Language    string    `bson:"language"`
	GeneratedAt time.Time `bson:"generated_at"`
	Failures    int       `bson:"failures"`
	Body        bson.M    `bson:"body"`
}

func toDocument(rec pipeline.ArchiveRecord) (snapshotDocument, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return snapshotDocument{}, err
	}
	var body bson.M
	if err := bson.UnmarshalExtJSON(data, false, &body); err != nil {
		return snapshotDocument{}, err
	}
	return snapshotDocument{
		SessionID:   rec.SessionID,
		UserID:      rec.UserID,
		Role:        rec.Role,
		Language:    rec.Language,
		GeneratedAt: rec.GeneratedAt,
		Failures:    rec.Failures,
		Body:        body,
	}, nil
}

func fromDocument(doc snapshotDocument) (pipeline.ArchiveRecord, error) {
	data, err := bson.MarshalExtJSON(doc.Body, false, false)
	if err != nil {
		return pipeline.ArchiveRecord{}, err
	}
	var rec pipeline.ArchiveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return pipeline.ArchiveRecord{}, err
	}
	return rec, nil
}

// SnapshotArchive implements pipeline.Archive on a Mongo collection
type SnapshotArchive struct {
	mongo *MongoInternal
}

// NewSnapshotArchive returns the archive and creates its index
func NewSnapshotArchive(ctx context.Context, m *MongoInternal) (*SnapshotArchive, error) {
	_, err := m.collection(snapshotCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "generated_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating snapshot index: %w", err)
	}
	return &SnapshotArchive{mongo: m}, nil
}

// Save inserts one archived snapshot
func (a *SnapshotArchive) Save(ctx context.Context, rec pipeline.ArchiveRecord) error {
	doc, err := toDocument(rec)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = a.mongo.collection(snapshotCollection).InsertOne(ctx, doc)
	return err
}

// History returns the newest snapshots of userID generated after since
func (a *SnapshotArchive) History(ctx context.Context, userID string, since time.Time, limit int) ([]pipeline.ArchiveRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter := bson.M{"user_id": userID}
	if !since.IsZero() {
		filter["generated_at"] = bson.M{"$gte": since.UTC()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "generated_at", Value: -1}}).SetLimit(int64(limit))

	cur, err := a.mongo.collection(snapshotCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cur.Close(ctx)
	}()

	out := []pipeline.ArchiveRecord{}
	for cur.Next(ctx) {
		var doc snapshotDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rec, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}
