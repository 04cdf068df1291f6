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

const nutritionPlanCollectionName = "nutrition_plans"

// mongoNutritionPlanRepository implements repository.NutritionPlanRepository
type mongoNutritionPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionPlanRepository creates a new NutritionPlan repository backed by MongoDB.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		collection: db.Collection(nutritionPlanCollectionName),
	}
}

// Create inserts a new nutrition plan into the database.
func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.Name == "" {
		return primitive.NilObjectID, errors.New("nutrition plan requires a name")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a nutrition plan by its ID.
func (r *mongoNutritionPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	var plan domain.NutritionPlan

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every nutrition plan, newest first.
func (r *mongoNutritionPlanRepository) GetAll(ctx context.Context) ([]domain.NutritionPlan, error) {
	var plans []domain.NutritionPlan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update modifies the mutable fields of an existing plan.
func (r *mongoNutritionPlanRepository) Update(ctx context.Context, plan *domain.NutritionPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        plan.Name,
			"description": plan.Description,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a nutrition plan.
func (r *mongoNutritionPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNutritionPlanIndexes creates necessary indexes for the nutrition plans collection.
func EnsureNutritionPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nutritionistId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		zap.L().Warn("failed to create nutrition plan indexes", zap.Error(err))
	}
}
