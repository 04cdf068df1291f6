package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoleIsProfessional(t *testing.T) {
	assert.True(t, RoleNutritionist.IsProfessional())
	assert.True(t, RoleTrainer.IsProfessional())
	assert.False(t, RoleClient.IsProfessional())
	assert.False(t, RoleAdmin.IsProfessional())
}

func TestLinkSlotSelection(t *testing.T) {
	nutritionistID := primitive.NewObjectID()
	trainerID := primitive.NewObjectID()

	client := User{
		Role:             RoleClient,
		MyNutritionistID: &nutritionistID,
		MyTrainerID:      &trainerID,
	}

	assert.Equal(t, &nutritionistID, client.LinkSlot(RoleNutritionist))
	assert.Equal(t, &trainerID, client.LinkSlot(RoleTrainer))
	assert.Nil(t, client.LinkSlot(RoleAdmin))
	assert.Nil(t, client.LinkSlot(RoleClient))
}

func TestIsLinkedTo(t *testing.T) {
	nutritionistID := primitive.NewObjectID()
	client := User{Role: RoleClient, MyNutritionistID: &nutritionistID}

	assert.True(t, client.IsLinkedTo(nutritionistID, RoleNutritionist))
	assert.False(t, client.IsLinkedTo(nutritionistID, RoleTrainer))
	assert.False(t, client.IsLinkedTo(primitive.NewObjectID(), RoleNutritionist))

	empty := User{Role: RoleClient}
	assert.False(t, empty.IsLinkedTo(nutritionistID, RoleNutritionist))
}

func TestAssignmentKindAssigningRole(t *testing.T) {
	assert.Equal(t, RoleNutritionist, KindNutritionPlan.AssigningRole())
	assert.Equal(t, RoleTrainer, KindWorkoutRoutine.AssigningRole())
}
