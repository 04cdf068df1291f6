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

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Upsert atomically creates or refreshes the assignment document for the
// (kind, clientId, resourceId) triple. A single conditional write keeps the
// operation last-writer-wins without a read-modify-write race; the unique
// compound index guarantees at most one document per triple.
func (r *mongoAssignmentRepository) Upsert(ctx context.Context, assignment *domain.Assignment) (*domain.Assignment, error) {
	if assignment.Kind == "" ||
		assignment.ClientID == primitive.NilObjectID ||
		assignment.ResourceID == primitive.NilObjectID ||
		assignment.AssignedByID == primitive.NilObjectID {
		return nil, errors.New("assignment requires kind, clientId, resourceId and assignedById")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"kind":       assignment.Kind,
		"clientId":   assignment.ClientID,
		"resourceId": assignment.ResourceID,
	}

	set := bson.M{
		"assignedById": assignment.AssignedByID,
		"assignedAt":   now,
		"isActive":     assignment.IsActive,
		"updatedAt":    now,
	}
	// A nil window bound clears any bound left by a previous assignment.
	unset := bson.M{}
	if assignment.StartDate != nil {
		set["startDate"] = assignment.StartDate.UTC()
	} else {
		unset["startDate"] = ""
	}
	if assignment.EndDate != nil {
		set["endDate"] = assignment.EndDate.UTC()
	} else {
		unset["endDate"] = ""
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	findOptions := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var updated domain.Assignment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, findOptions).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent upsert of the same triple lost the insert race.
			return nil, repository.ErrDuplicateKey
		}
		return nil, err
	}
	return &updated, nil
}

// Get retrieves the assignment for a (kind, client, resource) triple.
func (r *mongoAssignmentRepository) Get(ctx context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	filter := bson.M{"kind": kind, "clientId": clientID, "resourceId": resourceID}

	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// Delete removes the assignment for a (kind, client, resource) triple.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) error {
	filter := bson.M{"kind": kind, "clientId": clientID, "resourceId": resourceID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByClient retrieves all assignments of a kind for a specific client.
func (r *mongoAssignmentRepository) GetByClient(ctx context.Context, kind domain.AssignmentKind, clientID primitive.ObjectID) ([]domain.Assignment, error) {
	filter := bson.M{"kind": kind, "clientId": clientID}
	return r.findAssignments(ctx, filter)
}

// GetByProfessional retrieves all assignments of a kind made by a specific professional.
func (r *mongoAssignmentRepository) GetByProfessional(ctx context.Context, kind domain.AssignmentKind, professionalID primitive.ObjectID) ([]domain.Assignment, error) {
	filter := bson.M{"kind": kind, "assignedById": professionalID}
	return r.findAssignments(ctx, filter)
}

// DeleteByClient removes every assignment belonging to a client.
func (r *mongoAssignmentRepository) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

// DeleteByResource removes every assignment referencing a resource.
func (r *mongoAssignmentRepository) DeleteByResource(ctx context.Context, kind domain.AssignmentKind, resourceID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"kind": kind, "resourceId": resourceID})
	return err
}

func (r *mongoAssignmentRepository) findAssignments(ctx context.Context, filter bson.M) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One assignment per (kind, client, resource) triple.
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "clientId", Value: 1},
				{Key: "resourceId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "assignedById", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		zap.L().Warn("failed to create assignment indexes", zap.Error(err))
	}
}
