package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"scanbatch-rest-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDBScanRepository implements ScanRepository using MongoDB.
type MongoDBScanRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBScanRepository creates a new MongoDB scan repository.
func NewMongoDBScanRepository(uri, database, collection string) (*MongoDBScanRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(false) // an insert is attempted exactly once

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "scannedAt", Value: -1}, {Key: "_id", Value: -1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBScanRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// ScanDocument represents a scan document in MongoDB.
type ScanDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Barcode   string             `bson:"barcode"`
	Level     string             `bson:"level"`
	ScannedAt time.Time          `bson:"scannedAt"`
}

func (d *ScanDocument) toModel() model.Scan {
	return model.Scan{
		ID:        d.ID.Hex(),
		Barcode:   d.Barcode,
		Level:     d.Level,
		ScannedAt: d.ScannedAt.UTC(),
	}
}

// Insert stores a scan. BSON dates hold milliseconds.
func (r *MongoDBScanRepository) Insert(ctx context.Context, scan *model.Scan) error {
	stampScannedAt(scan, time.Millisecond)

	doc := ScanDocument{
		ID:        primitive.NewObjectID(),
		Barcode:   scan.Barcode,
		Level:     scan.Level,
		ScannedAt: scan.ScannedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	scan.ID = doc.ID.Hex()
	return nil
}

// ListByScannedAtDesc returns all scans, newest first.
// ObjectIDs grow with insertion, so _id breaks timestamp ties.
func (r *MongoDBScanRepository) ListByScannedAtDesc(ctx context.Context) ([]model.Scan, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "scannedAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ScanDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode scans: %w", err)
	}

	scans := make([]model.Scan, 0, len(docs))
	for i := range docs {
		scans = append(scans, docs[i].toModel())
	}
	return scans, nil
}

// Stats returns statistics about the scan collection.
func (r *MongoDBScanRepository) Stats(ctx context.Context) (*model.ScanStats, error) {
	stats := &model.ScanStats{Backend: "mongodb"}

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.TotalScans = count

	opts := options.FindOne().SetSort(bson.D{{Key: "scannedAt", Value: -1}})
	var doc ScanDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err == nil {
		at := doc.ScannedAt.UTC()
		stats.LastScanAt = &at
	}

	result := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		switch size := collStats["size"].(type) {
		case int64:
			stats.SizeBytes = size
		case int32:
			stats.SizeBytes = int64(size)
		case float64:
			stats.SizeBytes = int64(size)
		}
	}

	return stats, nil
}

// Ping checks the primary is reachable.
func (r *MongoDBScanRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close closes the MongoDB connection.
func (r *MongoDBScanRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ ScanRepository = (*MongoDBScanRepository)(nil)
