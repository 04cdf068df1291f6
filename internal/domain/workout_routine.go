package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutRoutine is a reusable training program created by a Trainer
// (or an Admin) and assignable to clients.
type WorkoutRoutine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	// Creator of the routine. Nil when the creating professional was deleted.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (r *WorkoutRoutine) CreatorID() *primitive.ObjectID {
	return r.TrainerID
}
