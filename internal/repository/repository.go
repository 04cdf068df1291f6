package repository

import (
	"context"

	"nutriplat/coaching-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// SetLinkSlot writes a client's nutritionist/trainer slot. A nil
	// professionalID clears the slot.
	SetLinkSlot(ctx context.Context, clientID primitive.ObjectID, professionalRole domain.Role, professionalID *primitive.ObjectID) error
	// GetLinkedClients returns all clients whose slot for the given
	// professional role holds professionalID.
	GetLinkedClients(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) ([]domain.User, error)
	// ClearLinkSlots empties the matching slot on every client linked to
	// the professional (set-null cascade on professional deletion).
	ClearLinkSlots(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) error
}

// NutritionPlanRepository defines the interface for interacting with nutrition plan data.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error)
	GetAll(ctx context.Context) ([]domain.NutritionPlan, error)
	Update(ctx context.Context, plan *domain.NutritionPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRoutineRepository defines the interface for interacting with workout routine data.
type WorkoutRoutineRepository interface {
	Create(ctx context.Context, routine *domain.WorkoutRoutine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRoutine, error)
	GetAll(ctx context.Context) ([]domain.WorkoutRoutine, error)
	Update(ctx context.Context, routine *domain.WorkoutRoutine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AssignmentRepository defines the interface for interacting with assignment data.
// Assignments are keyed by (kind, clientId, resourceId); the backing store
// enforces uniqueness on that triple.
type AssignmentRepository interface {
	// Upsert atomically creates or refreshes the assignment row for the
	// triple, overwriting window, active flag and assigning professional.
	Upsert(ctx context.Context, assignment *domain.Assignment) (*domain.Assignment, error)
	Get(ctx context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) (*domain.Assignment, error)
	Delete(ctx context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) error
	GetByClient(ctx context.Context, kind domain.AssignmentKind, clientID primitive.ObjectID) ([]domain.Assignment, error)
	GetByProfessional(ctx context.Context, kind domain.AssignmentKind, professionalID primitive.ObjectID) ([]domain.Assignment, error)
	// DeleteByClient removes every assignment of a client (cascade on
	// client deletion).
	DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error
	// DeleteByResource removes every assignment of a resource (cascade on
	// plan/routine deletion).
	DeleteByResource(ctx context.Context, kind domain.AssignmentKind, resourceID primitive.ObjectID) error
}

// ProgressEntryRepository defines the interface for interacting with progress entry data.
type ProgressEntryRepository interface {
	Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error)
	GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error)
	Update(ctx context.Context, entry *domain.ProgressEntry) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByClient(ctx context.Context, clientID primitive.ObjectID) error
}
