package service

import (
	"context"
	"testing"
	"time"

	"nutriplat/coaching-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type planFixture struct {
	svc            NutritionPlanService
	userRepo       *fakeUserRepo
	planRepo       *fakePlanRepo
	assignmentRepo *fakeAssignmentRepo
}

func newPlanFixture() *planFixture {
	userRepo := newFakeUserRepo()
	planRepo := newFakePlanRepo()
	assignmentRepo := newFakeAssignmentRepo()
	policy := NewAuthorizationPolicy(userRepo)
	return &planFixture{
		svc:            NewNutritionPlanService(planRepo, userRepo, assignmentRepo, policy),
		userRepo:       userRepo,
		planRepo:       planRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (f *planFixture) createPlan(t *testing.T, creator *domain.User) *domain.NutritionPlan {
	t.Helper()
	plan, err := f.svc.CreatePlan(context.Background(), creator.ID, "Cutting plan", "Low carb, high protein")
	require.NoError(t, err)
	return plan
}

func TestCreatePlanRoleGate(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	trainer := f.userRepo.add(newTestTrainer())
	client := f.userRepo.add(newTestClient())
	admin := f.userRepo.add(newTestAdmin())

	plan := f.createPlan(t, nutritionist)
	require.NotNil(t, plan.NutritionistID)
	assert.Equal(t, nutritionist.ID, *plan.NutritionistID)

	_, err := f.svc.CreatePlan(ctx, trainer.ID, "Plan", "")
	assert.ErrorIs(t, err, ErrRoleDenied)
	_, err = f.svc.CreatePlan(ctx, client.ID, "Plan", "")
	assert.ErrorIs(t, err, ErrRoleDenied)

	// Admins may author plans too.
	_, err = f.svc.CreatePlan(ctx, admin.ID, "Admin plan", "")
	assert.NoError(t, err)
}

func TestUpdatePlanOwnership(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	owner := f.userRepo.add(newTestNutritionist())
	other := f.userRepo.add(&domain.User{
		FirstName: "Nora", LastName: "Second",
		Email: "nora@example.com", Role: domain.RoleNutritionist,
	})
	admin := f.userRepo.add(newTestAdmin())

	plan := f.createPlan(t, owner)

	// Another nutritionist holds the right role but not ownership.
	_, err := f.svc.UpdatePlan(ctx, plan.ID, other.ID, "Hijacked", "")
	assert.ErrorIs(t, err, ErrOwnershipDenied)

	updated, err := f.svc.UpdatePlan(ctx, plan.ID, owner.ID, "Refined plan", "More fiber")
	require.NoError(t, err)
	assert.Equal(t, "Refined plan", updated.Name)

	// Admin overrides ownership.
	_, err = f.svc.UpdatePlan(ctx, plan.ID, admin.ID, "Admin edit", "")
	assert.NoError(t, err)
}

func TestOrphanedPlanIsAdminOnly(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	admin := f.userRepo.add(newTestAdmin())

	// A plan whose creator was deleted has a nil creator pointer.
	planID, err := f.planRepo.Create(ctx, &domain.NutritionPlan{Name: "Orphan"})
	require.NoError(t, err)

	_, err = f.svc.UpdatePlan(ctx, planID, nutritionist.ID, "Claimed", "")
	assert.ErrorIs(t, err, ErrOwnershipDenied)

	_, err = f.svc.UpdatePlan(ctx, planID, admin.ID, "Admin edit", "")
	assert.NoError(t, err)
}

func TestAssignPlanRequiresLink(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	client := f.userRepo.add(newTestClient())
	plan := f.createPlan(t, nutritionist)

	// Unlinked pair is rejected.
	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrNotLinked)

	// Linked in the other slot only does not count.
	trainer := f.userRepo.add(newTestTrainer())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleTrainer, &trainer.ID))
	_, err = f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrNotLinked)

	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	view, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, domain.KindNutritionPlan, view.Kind)
	assert.Equal(t, "Cutting plan", view.ResourceName)
	assert.Equal(t, "Nadia Nutritionist", view.AssignedByName)
	assert.True(t, view.IsActive)
}

func TestAssignPlanUpsertRefreshesWindow(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	plan := f.createPlan(t, nutritionist)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{StartDate: &start, IsActive: true})
	require.NoError(t, err)

	// Re-assigning overwrites the window instead of duplicating.
	end := start.AddDate(0, 3, 0)
	view, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{EndDate: &end, IsActive: false})
	require.NoError(t, err)
	assert.Nil(t, view.StartDate)
	require.NotNil(t, view.EndDate)
	assert.True(t, view.EndDate.Equal(end))
	assert.False(t, view.IsActive)

	assignments, err := f.assignmentRepo.GetByClient(ctx, domain.KindNutritionPlan, client.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestAssignPlanRoleMismatch(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	trainer := f.userRepo.add(newTestTrainer())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleTrainer, &trainer.ID))

	planID, err := f.planRepo.Create(ctx, &domain.NutritionPlan{Name: "Plan"})
	require.NoError(t, err)

	// A trainer cannot assign nutrition plans, linked or not.
	_, err = f.svc.AssignPlan(ctx, trainer.ID, client.ID, planID, AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrRoleDenied)
}

func TestUnassignPlanOwnership(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	other := f.userRepo.add(&domain.User{
		FirstName: "Nora", LastName: "Second",
		Email: "nora@example.com", Role: domain.RoleNutritionist,
	})
	admin := f.userRepo.add(newTestAdmin())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	plan := f.createPlan(t, nutritionist)

	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)

	// Only the assigning professional or an admin may unassign.
	assert.ErrorIs(t, f.svc.UnassignPlan(ctx, client.ID, plan.ID, other.ID), ErrOwnershipDenied)
	require.NoError(t, f.svc.UnassignPlan(ctx, client.ID, plan.ID, nutritionist.ID))

	// Unassigning again reports the missing assignment.
	assert.ErrorIs(t, f.svc.UnassignPlan(ctx, client.ID, plan.ID, admin.ID), ErrNotFound)
}

func TestDeletePlanCascadesAssignments(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	plan := f.createPlan(t, nutritionist)

	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePlan(ctx, plan.ID, nutritionist.ID))

	assignments, err := f.assignmentRepo.GetByClient(ctx, domain.KindNutritionPlan, client.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	_, err = f.svc.GetPlan(ctx, plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignedViewsJoinNames(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))
	plan := f.createPlan(t, nutritionist)

	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, plan.ID, AssignmentWindow{IsActive: true})
	require.NoError(t, err)

	byClient, err := f.svc.AssignedToClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, plan.ID, byClient[0].ResourceID)
	assert.Equal(t, "Cutting plan", byClient[0].ResourceName)

	byProfessional, err := f.svc.AssignedByNutritionist(ctx, nutritionist.ID)
	require.NoError(t, err)
	require.Len(t, byProfessional, 1)
	assert.Equal(t, client.ID, byProfessional[0].ClientID)
}

func TestAssignPlanMissingParties(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	nutritionist := f.userRepo.add(newTestNutritionist())
	client := f.userRepo.add(newTestClient())
	require.NoError(t, f.userRepo.SetLinkSlot(ctx, client.ID, domain.RoleNutritionist, &nutritionist.ID))

	_, err := f.svc.AssignPlan(ctx, nutritionist.ID, client.ID, primitive.NewObjectID(), AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AssignPlan(ctx, nutritionist.ID, primitive.NewObjectID(), primitive.NewObjectID(), AssignmentWindow{IsActive: true})
	assert.ErrorIs(t, err, ErrNotFound)
}
