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

const userCollectionName = "users"

// linkSlotField maps a professional role to the bson field of the client slot.
func linkSlotField(professionalRole domain.Role) (string, bool) {
	switch professionalRole {
	case domain.RoleNutritionist:
		return "myNutritionistId", true
	case domain.RoleTrainer:
		return "myTrainerId", true
	}
	return "", false
}

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByRole retrieves all users holding the given role.
func (r *mongoUserRepository) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.findUsers(ctx, bson.M{"role": role})
}

// GetAll retrieves every user in the system.
func (r *mongoUserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	return r.findUsers(ctx, bson.M{})
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName string) error {
	update := bson.M{
		"$set": bson.M{
			"firstName": firstName,
			"lastName":  lastName,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// UpdateRole changes a user's role. Link slots are left untouched; callers
// decide whether role changes invalidate existing links.
func (r *mongoUserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error {
	update := bson.M{
		"$set": bson.M{
			"role":      role,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// Delete removes a user document.
func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetLinkSlot writes (or clears, when professionalID is nil) the client's
// nutritionist/trainer slot.
func (r *mongoUserRepository) SetLinkSlot(ctx context.Context, clientID primitive.ObjectID, professionalRole domain.Role, professionalID *primitive.ObjectID) error {
	field, ok := linkSlotField(professionalRole)
	if !ok {
		return errors.New("role has no link slot")
	}

	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	var update bson.M
	if professionalID == nil {
		update = bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				field:       *professionalID,
				"updatedAt": time.Now().UTC(),
			},
		}
	}
	return r.updateOne(ctx, filter, update)
}

// GetLinkedClients retrieves all clients whose matching slot holds professionalID.
func (r *mongoUserRepository) GetLinkedClients(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) ([]domain.User, error) {
	field, ok := linkSlotField(professionalRole)
	if !ok {
		return nil, errors.New("role has no link slot")
	}
	return r.findUsers(ctx, bson.M{field: professionalID, "role": domain.RoleClient})
}

// ClearLinkSlots empties the matching slot on every linked client. Used as
// a set-null cascade when a professional is deleted.
func (r *mongoUserRepository) ClearLinkSlots(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) error {
	field, ok := linkSlotField(professionalRole)
	if !ok {
		return errors.New("role has no link slot")
	}

	filter := bson.M{field: professionalID}
	update := bson.M{
		"$unset": bson.M{field: ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	// MatchedCount of zero is fine here: the professional may have no
	// linked clients.
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *mongoUserRepository) findUsers(ctx context.Context, filter bson.M) ([]domain.User, error) {
	var users []domain.User

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "myNutritionistId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "myTrainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		zap.L().Warn("failed to create user indexes", zap.Error(err))
	}
}
