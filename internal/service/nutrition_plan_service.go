package service

import (
	"context"
	"errors"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Service Interface ---
type NutritionPlanService interface {
	CreatePlan(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.NutritionPlan, error)
	GetPlans(ctx context.Context) ([]domain.NutritionPlan, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.NutritionPlan, error)
	UpdatePlan(ctx context.Context, planID, requesterID primitive.ObjectID, name, description string) (*domain.NutritionPlan, error)
	DeletePlan(ctx context.Context, planID, requesterID primitive.ObjectID) error

	AssignPlan(ctx context.Context, nutritionistID, clientID, planID primitive.ObjectID, window AssignmentWindow) (*AssignmentView, error)
	UnassignPlan(ctx context.Context, clientID, planID, requesterID primitive.ObjectID) error
	AssignedToClient(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentView, error)
	AssignedByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]AssignmentView, error)
}

// --- Service Implementation ---

// nutritionPlanService implements the NutritionPlanService interface.
type nutritionPlanService struct {
	planRepo       repository.NutritionPlanRepository
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	policy         *AuthorizationPolicy
}

// NewNutritionPlanService creates a new instance of nutritionPlanService.
func NewNutritionPlanService(
	planRepo repository.NutritionPlanRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	policy *AuthorizationPolicy,
) NutritionPlanService {
	return &nutritionPlanService{
		planRepo:       planRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		policy:         policy,
	}
}

// === Plan CRUD ===

// CreatePlan creates a nutrition plan owned by the creating nutritionist
// (or admin).
func (s *nutritionPlanService) CreatePlan(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.NutritionPlan, error) {
	if name == "" {
		return nil, errors.New("plan name is required")
	}

	creator, err := s.policy.RequireRequester(ctx, creatorID, domain.RoleNutritionist, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	plan := &domain.NutritionPlan{
		Name:           name,
		Description:    description,
		NutritionistID: &creator.ID,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, mapRepoError(err)
	}
	plan.ID = planID
	return plan, nil
}

// GetPlans lists all nutrition plans. Any authenticated role may browse.
func (s *nutritionPlanService) GetPlans(ctx context.Context) ([]domain.NutritionPlan, error) {
	return s.planRepo.GetAll(ctx)
}

func (s *nutritionPlanService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.NutritionPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return plan, nil
}

// UpdatePlan modifies a plan. Role gate first (nutritionist or admin), then
// the ownership gate: only the creator or an admin may write.
func (s *nutritionPlanService) UpdatePlan(ctx context.Context, planID, requesterID primitive.ObjectID, name, description string) (*domain.NutritionPlan, error) {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleNutritionist, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanWriteResource(requester, plan.NutritionistID); err != nil {
		return nil, err
	}

	plan.Name = name
	plan.Description = description
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, mapRepoError(err)
	}
	return plan, nil
}

// DeletePlan removes a plan and every assignment that references it.
func (s *nutritionPlanService) DeletePlan(ctx context.Context, planID, requesterID primitive.ObjectID) error {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleNutritionist, domain.RoleAdmin)
	if err != nil {
		return err
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.policy.CanWriteResource(requester, plan.NutritionistID); err != nil {
		return err
	}

	if err := s.assignmentRepo.DeleteByResource(ctx, domain.KindNutritionPlan, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("nutrition plan deleted",
		zap.String("planId", planID.Hex()),
		zap.String("requesterId", requesterID.Hex()),
	)
	return nil
}

// === Assignment Orchestration ===

// AssignPlan binds a plan to a linked client. Re-assigning the same
// (client, plan) pair refreshes the window and active flag in place.
func (s *nutritionPlanService) AssignPlan(ctx context.Context, nutritionistID, clientID, planID primitive.ObjectID, window AssignmentWindow) (*AssignmentView, error) {
	nutritionist, _, err := validateAssignmentPair(ctx, s.userRepo, domain.KindNutritionPlan, nutritionistID, clientID)
	if err != nil {
		return nil, err
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.Upsert(ctx, &domain.Assignment{
		Kind:         domain.KindNutritionPlan,
		ClientID:     clientID,
		ResourceID:   planID,
		AssignedByID: nutritionistID,
		StartDate:    window.StartDate,
		EndDate:      window.EndDate,
		IsActive:     window.IsActive,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	zap.L().Info("nutrition plan assigned",
		zap.String("planId", planID.Hex()),
		zap.String("clientId", clientID.Hex()),
		zap.String("nutritionistId", nutritionistID.Hex()),
	)

	view := newAssignmentView(assignment, plan.Name, plan.Description, displayName(nutritionist))
	return &view, nil
}

// UnassignPlan deletes the assignment row. Only the assigning nutritionist
// or an admin may remove it.
func (s *nutritionPlanService) UnassignPlan(ctx context.Context, clientID, planID, requesterID primitive.ObjectID) error {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleNutritionist, domain.RoleAdmin)
	if err != nil {
		return err
	}

	assignment, err := s.assignmentRepo.Get(ctx, domain.KindNutritionPlan, clientID, planID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.policy.CanUnassign(requester, assignment.AssignedByID); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, domain.KindNutritionPlan, clientID, planID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("nutrition plan unassigned",
		zap.String("planId", planID.Hex()),
		zap.String("clientId", clientID.Hex()),
		zap.String("requesterId", requesterID.Hex()),
	)
	return nil
}

// AssignedToClient lists a client's plan assignments joined with plan details.
func (s *nutritionPlanService) AssignedToClient(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetByClient(ctx, domain.KindNutritionPlan, clientID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments)
}

// AssignedByNutritionist lists the assignments a nutritionist has made.
func (s *nutritionPlanService) AssignedByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetByProfessional(ctx, domain.KindNutritionPlan, nutritionistID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments)
}

func (s *nutritionPlanService) buildViews(ctx context.Context, assignments []domain.Assignment) ([]AssignmentView, error) {
	views := make([]AssignmentView, 0, len(assignments))
	for i := range assignments {
		assignment := &assignments[i]

		var name, description string
		if plan, err := s.planRepo.GetByID(ctx, assignment.ResourceID); err == nil {
			name = plan.Name
			description = plan.Description
		}
		var assignedBy string
		if professional, err := s.userRepo.GetByID(ctx, assignment.AssignedByID); err == nil {
			assignedBy = displayName(professional)
		}

		views = append(views, newAssignmentView(assignment, name, description, assignedBy))
	}
	return views, nil
}
