package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleClient       Role = "client"
	RoleNutritionist Role = "nutritionist"
	RoleTrainer      Role = "trainer"
	RoleAdmin        Role = "admin"
)

// IsProfessional reports whether the role is Nutritionist or Trainer.
func (r Role) IsProfessional() bool {
	return r == RoleNutritionist || r == RoleTrainer
}

// User represents a user in the system (Client, Nutritionist, Trainer or Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Client-specific link slots ---
	// Each slot holds at most one professional at a time.
	// Only meaningful when Role == RoleClient.
	MyNutritionistID *primitive.ObjectID `bson:"myNutritionistId,omitempty" json:"myNutritionistId,omitempty"`
	MyTrainerID      *primitive.ObjectID `bson:"myTrainerId,omitempty" json:"myTrainerId,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LinkSlot returns the client's slot matching the given professional role,
// or nil when the slot is empty or the role has no slot.
func (u *User) LinkSlot(professionalRole Role) *primitive.ObjectID {
	switch professionalRole {
	case RoleNutritionist:
		return u.MyNutritionistID
	case RoleTrainer:
		return u.MyTrainerID
	}
	return nil
}

// IsLinkedTo reports whether the client's slot for the given professional
// role currently holds exactly this professional.
func (u *User) IsLinkedTo(professionalID primitive.ObjectID, professionalRole Role) bool {
	slot := u.LinkSlot(professionalRole)
	return slot != nil && *slot == professionalID
}
