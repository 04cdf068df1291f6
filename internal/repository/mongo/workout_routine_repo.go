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

const workoutRoutineCollectionName = "workout_routines"

// mongoWorkoutRoutineRepository implements repository.WorkoutRoutineRepository
type mongoWorkoutRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRoutineRepository creates a new WorkoutRoutine repository backed by MongoDB.
func NewMongoWorkoutRoutineRepository(db *mongo.Database) repository.WorkoutRoutineRepository {
	return &mongoWorkoutRoutineRepository{
		collection: db.Collection(workoutRoutineCollectionName),
	}
}

// Create inserts a new workout routine into the database.
func (r *mongoWorkoutRoutineRepository) Create(ctx context.Context, routine *domain.WorkoutRoutine) (primitive.ObjectID, error) {
	if routine.Name == "" {
		return primitive.NilObjectID, errors.New("workout routine requires a name")
	}

	routine.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a workout routine by its ID.
func (r *mongoWorkoutRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRoutine, error) {
	var routine domain.WorkoutRoutine

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// GetAll retrieves every workout routine, newest first.
func (r *mongoWorkoutRoutineRepository) GetAll(ctx context.Context) ([]domain.WorkoutRoutine, error) {
	var routines []domain.WorkoutRoutine
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return routines, nil
}

// Update modifies the mutable fields of an existing routine.
func (r *mongoWorkoutRoutineRepository) Update(ctx context.Context, routine *domain.WorkoutRoutine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        routine.Name,
			"description": routine.Description,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": routine.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout routine.
func (r *mongoWorkoutRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutRoutineIndexes creates necessary indexes for the workout routines collection.
func EnsureWorkoutRoutineIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		zap.L().Warn("failed to create workout routine indexes", zap.Error(err))
	}
}
