package mongo

import (
	"context"
	"errors"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const progressCollectionName = "progress_entries"

// mongoProgressEntryRepository implements repository.ProgressEntryRepository
type mongoProgressEntryRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressEntryRepository creates a new ProgressEntry repository backed by MongoDB.
func NewMongoProgressEntryRepository(db *mongo.Database) repository.ProgressEntryRepository {
	return &mongoProgressEntryRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress entry into the database.
func (r *mongoProgressEntryRepository) Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	if entry.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress entry requires clientId")
	}

	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted entry ID")
	}
	return insertedID, nil
}

// GetByID retrieves a progress entry by its ID.
func (r *mongoProgressEntryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error) {
	var entry domain.ProgressEntry

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// GetByClient retrieves all progress entries of a client, most recent entry date first.
func (r *mongoProgressEntryRepository) GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	var entries []domain.ProgressEntry
	findOptions := options.Find().SetSort(bson.D{{Key: "entryDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Update rewrites the mutable fields of an entry. CreatedAt and ClientID
// are never touched.
func (r *mongoProgressEntryRepository) Update(ctx context.Context, entry *domain.ProgressEntry) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("entry ID is required for update")
	}

	set := bson.M{
		"entryDate": entry.EntryDate,
		"updatedAt": time.Now().UTC(),
	}
	unset := bson.M{}

	if entry.WeightKg != nil {
		set["weightKg"] = *entry.WeightKg
	} else {
		unset["weightKg"] = ""
	}
	if entry.BodyFatPercentage != nil {
		set["bodyFatPercentage"] = *entry.BodyFatPercentage
	} else {
		unset["bodyFatPercentage"] = ""
	}
	if len(entry.Measurements) > 0 {
		set["measurements"] = entry.Measurements
	} else {
		unset["measurements"] = ""
	}
	if len(entry.PhotoKeys) > 0 {
		set["photoKeys"] = entry.PhotoKeys
	} else {
		unset["photoKeys"] = ""
	}
	if entry.Notes != "" {
		set["notes"] = entry.Notes
	} else {
		unset["notes"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a progress entry.
func (r *mongoProgressEntryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByClient removes every entry belonging to a client.
func (r *mongoProgressEntryRepository) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

// EnsureProgressEntryIndexes creates necessary indexes for the progress entries collection.
func EnsureProgressEntryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "entryDate", Value: -1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		zap.L().Warn("failed to create progress entry indexes", zap.Error(err))
	}
}
