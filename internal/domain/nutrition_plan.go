package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionPlan is a reusable nutrition program created by a Nutritionist
// (or an Admin) and assignable to clients.
type NutritionPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	// Creator of the plan. Nil when the creating professional was deleted.
	NutritionistID *primitive.ObjectID `bson:"nutritionistId,omitempty" json:"nutritionistId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CreatorID implements the ownable resource contract used by the
// authorization policy.
func (p *NutritionPlan) CreatorID() *primitive.ObjectID {
	return p.NutritionistID
}
