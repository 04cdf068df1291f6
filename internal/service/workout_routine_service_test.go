package service

import (
	"context"
	"testing"

	"nutriplat/coaching-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRoutineUsesTrainerSlot(t *testing.T) {
	userRepo := newFakeUserRepo()
	routineRepo := newFakeRoutineRepo()
	assignmentRepo := newFakeAssignmentRepo()
	policy := NewAuthorizationPolicy(userRepo)
	svc := NewWorkoutRoutineService(routineRepo, userRepo, assignmentRepo, policy)
	ctx := context.Background()

	trainer := userRepo.add(newTestTrainer())
	nutritionist := userRepo.add(newTestNutritionist())
	client := userRepo.add(newTestClient())

	routine, err := svc.CreateRoutine(ctx, trainer.ID, "Push pull legs", "6 day split")
	require.NoError(t, err)

	// Nutritionist slot does not satisfy the trainer linkage gate.
	require.NoError(t, userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	_, err = svc.AssignRoutine(ctx, trainer.ID, client.ID, routine.ID, AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrNotLinked)

	require.NoError(t, userRepo.SetLinkSlot(ctx, client.ID, domain.RoleTrainer, &trainer.ID))
	view, err := svc.AssignRoutine(ctx, trainer.ID, client.ID, routine.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, domain.KindWorkoutRoutine, view.Kind)
	assert.Equal(t, "Taylor Trainer", view.AssignedByName)

	// A nutritionist cannot assign workout routines.
	_, err = svc.AssignRoutine(ctx, nutritionist.ID, client.ID, routine.ID, AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrRoleDenied)
}

func TestRoutineAssignmentsIndependentOfPlans(t *testing.T) {
	userRepo := newFakeUserRepo()
	routineRepo := newFakeRoutineRepo()
	assignmentRepo := newFakeAssignmentRepo()
	policy := NewAuthorizationPolicy(userRepo)
	svc := NewWorkoutRoutineService(routineRepo, userRepo, assignmentRepo, policy)
	ctx := context.Background()

	trainer := userRepo.add(newTestTrainer())
	client := userRepo.add(newTestClient())
	require.NoError(t, userRepo.SetLinkSlot(ctx, client.ID, domain.RoleTrainer, &trainer.ID))

	routine, err := svc.CreateRoutine(ctx, trainer.ID, "Strength block", "")
	require.NoError(t, err)
	_, err = svc.AssignRoutine(ctx, trainer.ID, client.ID, routine.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)

	// The plan kind sees nothing for this client.
	plans, err := assignmentRepo.GetByClient(ctx, domain.KindNutritionPlan, client.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)

	routines, err := svc.AssignedToClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, routines, 1)
	assert.Equal(t, routine.ID, routines[0].ResourceID)
}

func TestDeleteRoutineOwnership(t *testing.T) {
	userRepo := newFakeUserRepo()
	routineRepo := newFakeRoutineRepo()
	assignmentRepo := newFakeAssignmentRepo()
	policy := NewAuthorizationPolicy(userRepo)
	svc := NewWorkoutRoutineService(routineRepo, userRepo, assignmentRepo, policy)
	ctx := context.Background()

	owner := userRepo.add(newTestTrainer())
	other := userRepo.add(&domain.User{
		FirstName: "Tom", LastName: "Second",
		Email: "tom@example.com", Role: domain.RoleTrainer,
	})

	routine, err := svc.CreateRoutine(ctx, owner.ID, "Block one", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRoutine(ctx, routine.ID, other.ID), ErrOwnershipDenied)
	require.NoError(t, svc.DeleteRoutine(ctx, routine.ID, owner.ID))

	_, err = svc.GetRoutine(ctx, routine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
