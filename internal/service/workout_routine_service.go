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
type WorkoutRoutineService interface {
	CreateRoutine(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.WorkoutRoutine, error)
	GetRoutines(ctx context.Context) ([]domain.WorkoutRoutine, error)
	GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.WorkoutRoutine, error)
	UpdateRoutine(ctx context.Context, routineID, requesterID primitive.ObjectID, name, description string) (*domain.WorkoutRoutine, error)
	DeleteRoutine(ctx context.Context, routineID, requesterID primitive.ObjectID) error

	AssignRoutine(ctx context.Context, trainerID, clientID, routineID primitive.ObjectID, window AssignmentWindow) (*AssignmentView, error)
	UnassignRoutine(ctx context.Context, clientID, routineID, requesterID primitive.ObjectID) error
	AssignedToClient(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentView, error)
	AssignedByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]AssignmentView, error)
}

// --- Service Implementation ---

// workoutRoutineService implements the WorkoutRoutineService interface.
// Mirrors nutritionPlanService with the trainer role and routine kind.
type workoutRoutineService struct {
	routineRepo    repository.WorkoutRoutineRepository
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	policy         *AuthorizationPolicy
}

// NewWorkoutRoutineService creates a new instance of workoutRoutineService.
func NewWorkoutRoutineService(
	routineRepo repository.WorkoutRoutineRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	policy *AuthorizationPolicy,
) WorkoutRoutineService {
	return &workoutRoutineService{
		routineRepo:    routineRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		policy:         policy,
	}
}

// === Routine CRUD ===

func (s *workoutRoutineService) CreateRoutine(ctx context.Context, creatorID primitive.ObjectID, name, description string) (*domain.WorkoutRoutine, error) {
	if name == "" {
		return nil, errors.New("routine name is required")
	}

	creator, err := s.policy.RequireRequester(ctx, creatorID, domain.RoleTrainer, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	routine := &domain.WorkoutRoutine{
		Name:        name,
		Description: description,
		TrainerID:   &creator.ID,
	}
	routineID, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, mapRepoError(err)
	}
	routine.ID = routineID
	return routine, nil
}

func (s *workoutRoutineService) GetRoutines(ctx context.Context) ([]domain.WorkoutRoutine, error) {
	return s.routineRepo.GetAll(ctx)
}

func (s *workoutRoutineService) GetRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.WorkoutRoutine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return routine, nil
}

func (s *workoutRoutineService) UpdateRoutine(ctx context.Context, routineID, requesterID primitive.ObjectID, name, description string) (*domain.WorkoutRoutine, error) {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleTrainer, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	routine, err := s.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanWriteResource(requester, routine.TrainerID); err != nil {
		return nil, err
	}

	routine.Name = name
	routine.Description = description
	if err := s.routineRepo.Update(ctx, routine); err != nil {
		return nil, mapRepoError(err)
	}
	return routine, nil
}

func (s *workoutRoutineService) DeleteRoutine(ctx context.Context, routineID, requesterID primitive.ObjectID) error {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleTrainer, domain.RoleAdmin)
	if err != nil {
		return err
	}

	routine, err := s.GetRoutine(ctx, routineID)
	if err != nil {
		return err
	}
	if err := s.policy.CanWriteResource(requester, routine.TrainerID); err != nil {
		return err
	}

	if err := s.assignmentRepo.DeleteByResource(ctx, domain.KindWorkoutRoutine, routineID); err != nil {
		return err
	}
	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("workout routine deleted",
		zap.String("routineId", routineID.Hex()),
		zap.String("requesterId", requesterID.Hex()),
	)
	return nil
}

// === Assignment Orchestration ===

// AssignRoutine binds a routine to a linked client with upsert semantics.
func (s *workoutRoutineService) AssignRoutine(ctx context.Context, trainerID, clientID, routineID primitive.ObjectID, window AssignmentWindow) (*AssignmentView, error) {
	trainer, _, err := validateAssignmentPair(ctx, s.userRepo, domain.KindWorkoutRoutine, trainerID, clientID)
	if err != nil {
		return nil, err
	}

	routine, err := s.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.Upsert(ctx, &domain.Assignment{
		Kind:         domain.KindWorkoutRoutine,
		ClientID:     clientID,
		ResourceID:   routineID,
		AssignedByID: trainerID,
		StartDate:    window.StartDate,
		EndDate:      window.EndDate,
		IsActive:     window.IsActive,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	zap.L().Info("workout routine assigned",
		zap.String("routineId", routineID.Hex()),
		zap.String("clientId", clientID.Hex()),
		zap.String("trainerId", trainerID.Hex()),
	)

	view := newAssignmentView(assignment, routine.Name, routine.Description, displayName(trainer))
	return &view, nil
}

func (s *workoutRoutineService) UnassignRoutine(ctx context.Context, clientID, routineID, requesterID primitive.ObjectID) error {
	requester, err := s.policy.RequireRequester(ctx, requesterID, domain.RoleTrainer, domain.RoleAdmin)
	if err != nil {
		return err
	}

	assignment, err := s.assignmentRepo.Get(ctx, domain.KindWorkoutRoutine, clientID, routineID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := s.policy.CanUnassign(requester, assignment.AssignedByID); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, domain.KindWorkoutRoutine, clientID, routineID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("workout routine unassigned",
		zap.String("routineId", routineID.Hex()),
		zap.String("clientId", clientID.Hex()),
		zap.String("requesterId", requesterID.Hex()),
	)
	return nil
}

func (s *workoutRoutineService) AssignedToClient(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetByClient(ctx, domain.KindWorkoutRoutine, clientID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments)
}

func (s *workoutRoutineService) AssignedByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetByProfessional(ctx, domain.KindWorkoutRoutine, trainerID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, assignments)
}

func (s *workoutRoutineService) buildViews(ctx context.Context, assignments []domain.Assignment) ([]AssignmentView, error) {
	views := make([]AssignmentView, 0, len(assignments))
	for i := range assignments {
		assignment := &assignments[i]

		var name, description string
		if routine, err := s.routineRepo.GetByID(ctx, assignment.ResourceID); err == nil {
			name = routine.Name
			description = routine.Description
		}
		var assignedBy string
		if professional, err := s.userRepo.GetByID(ctx, assignment.AssignedByID); err == nil {
			assignedBy = displayName(professional)
		}

		views = append(views, newAssignmentView(assignment, name, description, assignedBy))
	}
	return views, nil
}
