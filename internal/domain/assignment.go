package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentKind distinguishes which resource type an assignment binds.
type AssignmentKind string

const (
	KindNutritionPlan  AssignmentKind = "nutrition_plan"
	KindWorkoutRoutine AssignmentKind = "workout_routine"
)

// AssigningRole returns the professional role allowed to create
// assignments of this kind.
func (k AssignmentKind) AssigningRole() Role {
	if k == KindWorkoutRoutine {
		return RoleTrainer
	}
	return RoleNutritionist
}

// Assignment binds a resource (nutrition plan or workout routine) to a
// Client, as assigned by a linked professional. At most one assignment
// exists per (kind, client, resource) triple; re-assignment updates the
// existing document in place.
type Assignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind       AssignmentKind     `bson:"kind" json:"kind"`
	ClientID   primitive.ObjectID `bson:"clientId" json:"clientId"`
	ResourceID primitive.ObjectID `bson:"resourceId" json:"resourceId"`
	// Professional who made (or last refreshed) the assignment.
	AssignedByID primitive.ObjectID `bson:"assignedById" json:"assignedById"`
	AssignedAt   time.Time          `bson:"assignedAt" json:"assignedAt"`
	StartDate    *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	// Advisory flag supplied by the assigning professional. The system
	// never derives it from EndDate.
	IsActive  bool      `bson:"isActive" json:"isActive"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
