package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davinci-dev/davinci/internal/model"
)

// mongoSnapshot is the stored form of a snapshot. The document is kept as a
// JSON string so that key order survives the round trip.
type mongoSnapshot struct {
	ID          string    `bson:"id"`
	Version     string    `bson:"version"`
	PublishedAt time.Time `bson:"published_at"`
	IsLatest    bool      `bson:"is_latest"`
	Document    string    `bson:"document"`
}

func toMongo(s *model.Snapshot) mongoSnapshot {
	return mongoSnapshot{
		ID:          s.ID,
		Version:     s.Version,
		PublishedAt: s.PublishedAt.UTC(),
		IsLatest:    s.IsLatest,
		Document:    string(s.Document),
	}
}

func (m mongoSnapshot) toModel() *model.Snapshot {
	return &model.Snapshot{
		ID:          m.ID,
		Version:     m.Version,
		PublishedAt: m.PublishedAt,
		IsLatest:    m.IsLatest,
		Document:    []byte(m.Document),
	}
}

// MongoDB is an implementation of the Database interface using MongoDB
type MongoDB struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
}

// NewMongoDB creates a new instance of the MongoDB database
func NewMongoDB(ctx context.Context, connectionURI, databaseName, collectionName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(connectionURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the MongoDB server to verify the connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	database := client.Database(databaseName)
	collection := database.Collection(collectionName)

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "version", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("version_unique"),
		},
		{
			Keys: bson.D{bson.E{Key: "is_latest", Value: 1}},
		},
	}

	_, err = collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		// Mongo will error if the index already exists, we can ignore this and continue.
		var commandError mongo.CommandError
		if errors.As(err, &commandError) && commandError.Code != 86 {
			return nil, err
		}
		log.Printf("Indexes already exists, skipping.")
	}

	return &MongoDB{
		client:     client,
		database:   database,
		collection: collection,
	}, nil
}

// List retrieves snapshots with optional filtering and pagination
func (db *MongoDB) List(ctx context.Context, filter *SnapshotFilter, cursor string, limit int) ([]*model.Snapshot, string, error) {
	if limit <= 0 {
		limit = 10
	}

	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	mongoFilter := bson.M{}
	if filter != nil {
		if filter.Version != nil {
			mongoFilter["version"] = *filter.Version
		}
		if filter.IsLatest != nil {
			mongoFilter["is_latest"] = *filter.IsLatest
		}
		if filter.PublishedSince != nil {
			mongoFilter["published_at"] = bson.M{"$gt": filter.PublishedSince.UTC()}
		}
	}

	if cursor != "" {
		if _, err := uuid.Parse(cursor); err != nil {
			return nil, "", fmt.Errorf("invalid cursor format: %w", err)
		}
		mongoFilter["id"] = bson.M{"$gt": cursor}
	}

	findOptions := options.Find().SetSort(bson.M{"id": 1}).SetLimit(int64(limit))

	mongoCursor, err := db.collection.Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, "", err
	}
	defer mongoCursor.Close(ctx)

	var stored []mongoSnapshot
	if err = mongoCursor.All(ctx, &stored); err != nil {
		return nil, "", err
	}

	results := make([]*model.Snapshot, 0, len(stored))
	for _, s := range stored {
		results = append(results, s.toModel())
	}

	nextCursor := ""
	if len(results) >= limit {
		nextCursor = results[len(results)-1].ID
	}

	return results, nextCursor, nil
}

// GetByID retrieves a single snapshot by its ID
func (db *MongoDB) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	return db.findOne(ctx, bson.M{"id": id})
}

// GetLatest retrieves the latest snapshot
func (db *MongoDB) GetLatest(ctx context.Context) (*model.Snapshot, error) {
	return db.findOne(ctx, bson.M{"is_latest": true})
}

func (db *MongoDB) findOne(ctx context.Context, filter bson.M) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var stored mongoSnapshot
	err := db.collection.FindOne(ctx, filter).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving snapshot: %w", err)
	}
	return stored.toModel(), nil
}

// Publish stores a new latest snapshot
func (db *MongoDB) Publish(ctx context.Context, snapshot *model.Snapshot) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	previous, err := db.GetLatest(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Clear the flag before inserting; a failed insert puts it back.
	_, err = db.collection.UpdateMany(ctx,
		bson.M{"is_latest": true},
		bson.M{"$set": bson.M{"is_latest": false}})
	if err != nil {
		return nil, fmt.Errorf("error clearing latest snapshot: %w", err)
	}

	stored := toMongo(snapshot)
	stored.IsLatest = true

	if _, err = db.collection.InsertOne(ctx, stored); err != nil {
		db.restoreLatest(ctx, previous)
		if mongo.IsDuplicateKeyError(err) {
			if db.versionExists(ctx, snapshot.Version) {
				return nil, ErrInvalidVersion
			}
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("error inserting snapshot: %w", err)
	}

	return stored.toModel(), nil
}

func (db *MongoDB) restoreLatest(ctx context.Context, previous *model.Snapshot) {
	if previous == nil {
		return
	}
	_, err := db.collection.UpdateOne(ctx,
		bson.M{"id": previous.ID},
		bson.M{"$set": bson.M{"is_latest": true}})
	if err != nil {
		log.Printf("Failed to restore latest flag on snapshot %s: %v", previous.ID, err)
	}
}

func (db *MongoDB) versionExists(ctx context.Context, version string) bool {
	count, err := db.collection.CountDocuments(ctx, bson.M{"version": version})
	return err == nil && count > 0
}

// ImportSeed imports initial data from a seed file into MongoDB
func (db *MongoDB) ImportSeed(ctx context.Context, seedFilePath string) error {
	snapshots, err := ReadSeedFile(ctx, seedFilePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var existing []mongoSnapshot
	mongoCursor, err := db.collection.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	if err := mongoCursor.All(ctx, &existing); err != nil {
		return err
	}

	all := make([]*model.Snapshot, 0, len(existing)+len(snapshots))
	for _, s := range existing {
		all = append(all, s.toModel())
	}
	all = append(all, snapshots...)

	log.Printf("Importing %d snapshots into collection %s", len(snapshots), db.collection.Name())

	merged := markLatest(all)
	for i, s := range merged {
		opts := options.Update().SetUpsert(true)
		result, err := db.collection.UpdateOne(ctx, bson.M{"id": s.ID}, bson.M{"$set": toMongo(s)}, opts)
		if err != nil {
			log.Printf("Error importing snapshot %s: %v", s.ID, err)
			continue
		}

		switch {
		case result.UpsertedCount > 0:
			log.Printf("[%d/%d] Created snapshot: %s", i+1, len(merged), s.Version)
		case result.ModifiedCount > 0:
			log.Printf("[%d/%d] Updated snapshot: %s", i+1, len(merged), s.Version)
		}
	}

	log.Println("MongoDB database import completed successfully")
	return nil
}

// Close closes the database connection
func (db *MongoDB) Close() error {
	return db.client.Disconnect(context.Background())
}

// Connection returns information about the database connection
func (db *MongoDB) Connection() *ConnectionInfo {
	isConnected := false
	if db.client != nil {
		// A quick ping with 1 second timeout to verify connection
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		isConnected = db.client.Ping(ctx, nil) == nil
	}

	return &ConnectionInfo{
		Type:        ConnectionTypeMongoDB,
		IsConnected: isConnected,
		Raw:         db.client,
	}
}
