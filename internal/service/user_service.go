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
type UserService interface {
	// Linking model: single-slot Client -> Nutritionist and Client -> Trainer
	// relationships.
	Link(ctx context.Context, professionalID, clientID primitive.ObjectID, professionalRole domain.Role) error
	Unlink(ctx context.Context, professionalID, clientID primitive.ObjectID, professionalRole domain.Role) error
	LinkedClients(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) ([]domain.User, error)
	LinkedProfessional(ctx context.Context, clientID primitive.ObjectID, slot domain.Role) (*domain.User, error)

	// Profile and directory
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, firstName, lastName string) (*domain.User, error)
	GetClients(ctx context.Context) ([]domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)

	// Admin operations
	UpdateUserRole(ctx context.Context, userID primitive.ObjectID, newRole domain.Role) error
	DeleteUser(ctx context.Context, userID, requestingAdminID primitive.ObjectID) error
}

// --- Service Implementation ---

// userService implements the UserService interface.
type userService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	progressRepo   repository.ProgressEntryRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	progressRepo repository.ProgressEntryRepository,
) UserService {
	return &userService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
	}
}

// === Linking Model ===

// Link occupies the client's nutritionist or trainer slot with the given
// professional. Linking the same pair twice is an idempotent success; a slot
// held by a different professional is never silently overwritten.
func (s *userService) Link(ctx context.Context, professionalID, clientID primitive.ObjectID, professionalRole domain.Role) error {
	if !professionalRole.IsProfessional() {
		return ErrRoleDenied
	}

	professional, err := s.getUser(ctx, professionalID)
	if err != nil {
		return err
	}
	client, err := s.getUser(ctx, clientID)
	if err != nil {
		return err
	}

	if professional.Role != professionalRole {
		return ErrRoleDenied
	}
	if !client.IsClient() {
		return ErrRoleDenied
	}

	if slot := client.LinkSlot(professionalRole); slot != nil {
		if *slot == professionalID {
			return nil // Already linked to this professional
		}
		return ErrAlreadyLinkedElsewhere
	}

	if err := s.userRepo.SetLinkSlot(ctx, clientID, professionalRole, &professionalID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("client linked to professional",
		zap.String("clientId", clientID.Hex()),
		zap.String("professionalId", professionalID.Hex()),
		zap.String("professionalRole", string(professionalRole)),
	)
	return nil
}

// Unlink clears the client's slot, but only when it currently holds exactly
// this professional.
func (s *userService) Unlink(ctx context.Context, professionalID, clientID primitive.ObjectID, professionalRole domain.Role) error {
	if !professionalRole.IsProfessional() {
		return ErrRoleDenied
	}

	client, err := s.getUser(ctx, clientID)
	if err != nil {
		return err
	}

	if !client.IsLinkedTo(professionalID, professionalRole) {
		return ErrNotLinked
	}

	if err := s.userRepo.SetLinkSlot(ctx, clientID, professionalRole, nil); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("client unlinked from professional",
		zap.String("clientId", clientID.Hex()),
		zap.String("professionalId", professionalID.Hex()),
		zap.String("professionalRole", string(professionalRole)),
	)
	return nil
}

// LinkedClients returns all clients whose matching slot holds this professional.
func (s *userService) LinkedClients(ctx context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) ([]domain.User, error) {
	professional, err := s.getUser(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if professional.Role != professionalRole || !professionalRole.IsProfessional() {
		return nil, ErrRoleDenied
	}

	clients, err := s.userRepo.GetLinkedClients(ctx, professionalID, professionalRole)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// LinkedProfessional returns the professional currently occupying the
// client's slot, or ErrNotFound when the slot is empty.
func (s *userService) LinkedProfessional(ctx context.Context, clientID primitive.ObjectID, slot domain.Role) (*domain.User, error) {
	if !slot.IsProfessional() {
		return nil, ErrRoleDenied
	}

	client, err := s.getUser(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrRoleDenied
	}

	professionalID := client.LinkSlot(slot)
	if professionalID == nil {
		return nil, ErrNotFound
	}
	professional, err := s.getUser(ctx, *professionalID)
	if err != nil {
		return nil, err
	}
	professional.PasswordHash = ""
	return professional, nil
}

// === Profile & Directory ===

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, firstName, lastName string) (*domain.User, error) {
	if firstName == "" {
		return nil, errors.New("first name is required")
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, firstName, lastName); err != nil {
		return nil, mapRepoError(err)
	}
	return s.GetUser(ctx, userID)
}

func (s *userService) GetClients(ctx context.Context) ([]domain.User, error) {
	clients, err := s.userRepo.GetByRole(ctx, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// === Admin Operations ===

// UpdateUserRole changes a user's role. Demoting a professional clears its
// slot on every linked client so no client keeps a dangling link.
func (s *userService) UpdateUserRole(ctx context.Context, userID primitive.ObjectID, newRole domain.Role) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == newRole {
		return nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, newRole); err != nil {
		return mapRepoError(err)
	}

	if user.Role.IsProfessional() {
		if err := s.userRepo.ClearLinkSlots(ctx, userID, user.Role); err != nil {
			return err
		}
	}

	zap.L().Info("user role updated",
		zap.String("userId", userID.Hex()),
		zap.String("oldRole", string(user.Role)),
		zap.String("newRole", string(newRole)),
	)
	return nil
}

// DeleteUser removes a user. Deleting a professional empties that slot on
// all linked clients (set-null cascade); deleting a client removes the
// client's assignments and progress entries.
func (s *userService) DeleteUser(ctx context.Context, userID, requestingAdminID primitive.ObjectID) error {
	if userID == requestingAdminID {
		return ErrSelfDeletion
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	switch {
	case user.Role.IsProfessional():
		if err := s.userRepo.ClearLinkSlots(ctx, userID, user.Role); err != nil {
			return err
		}
	case user.IsClient():
		if err := s.assignmentRepo.DeleteByClient(ctx, userID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByClient(ctx, userID); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return mapRepoError(err)
	}

	zap.L().Info("user deleted",
		zap.String("userId", userID.Hex()),
		zap.String("role", string(user.Role)),
	)
	return nil
}

// --- helpers ---

func (s *userService) getUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

// mapRepoError maps repository sentinels to service error kinds.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrPersistenceConflict
	default:
		return err
	}
}
