package service

import (
	"context"
	"errors"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorizationPolicy centralizes the role-gate and ownership-gate rules so
// they are defined once and testable independently of HTTP plumbing.
//
// Two distinct gates apply, in order:
//
//  1. Role gate: coarse role membership. Absolute — an admin calling a
//     client-only operation is still denied.
//  2. Ownership gate: creator/owner/linkage check on the specific resource
//     instance. Admins bypass this gate universally.
type AuthorizationPolicy struct {
	userRepo repository.UserRepository
}

// NewAuthorizationPolicy creates the policy component.
func NewAuthorizationPolicy(userRepo repository.UserRepository) *AuthorizationPolicy {
	return &AuthorizationPolicy{userRepo: userRepo}
}

// RequireRole enforces the role gate: the user's role must be among the
// allowed roles. Returns ErrRoleDenied otherwise.
func (p *AuthorizationPolicy) RequireRole(user *domain.User, allowed ...domain.Role) error {
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return ErrRoleDenied
}

// RequireRequester loads the requesting user and enforces the role gate in
// one step. Returns ErrNotFound when the requester no longer exists.
func (p *AuthorizationPolicy) RequireRequester(ctx context.Context, requesterID primitive.ObjectID, allowed ...domain.Role) (*domain.User, error) {
	requester, err := p.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := p.RequireRole(requester, allowed...); err != nil {
		return nil, err
	}
	return requester, nil
}

// CanWriteResource enforces the ownership rule for plans and routines: the
// writer must be the creating professional or an admin. A nil creator (the
// creating professional was deleted) leaves only admins.
func (p *AuthorizationPolicy) CanWriteResource(requester *domain.User, creatorID *primitive.ObjectID) error {
	if requester.IsAdmin() {
		return nil
	}
	if creatorID != nil && *creatorID == requester.ID {
		return nil
	}
	return ErrOwnershipDenied
}

// CanReadProgress enforces the client-self rule for progress entry reads:
// the owner, an admin, or a professional currently linked to the owner may
// read. Linkage is evaluated against the owner's current slots on every
// call, never cached.
func (p *AuthorizationPolicy) CanReadProgress(requester, owner *domain.User) error {
	if requester.ID == owner.ID {
		return nil
	}
	if requester.IsAdmin() {
		return nil
	}
	if requester.Role.IsProfessional() && owner.IsLinkedTo(requester.ID, requester.Role) {
		return nil
	}
	return ErrOwnershipDenied
}

// CanWriteProgress enforces progress entry mutation: only the owning client
// may update an entry. Deletion additionally admits admins; callers pass
// allowAdmin accordingly.
func (p *AuthorizationPolicy) CanWriteProgress(requester *domain.User, ownerID primitive.ObjectID, allowAdmin bool) error {
	if requester.ID == ownerID {
		return nil
	}
	if allowAdmin && requester.IsAdmin() {
		return nil
	}
	return ErrOwnershipDenied
}

// CanUnassign enforces assignment removal: the original assigning
// professional or an admin.
func (p *AuthorizationPolicy) CanUnassign(requester *domain.User, assignedByID primitive.ObjectID) error {
	if requester.IsAdmin() {
		return nil
	}
	if requester.ID == assignedByID {
		return nil
	}
	return ErrOwnershipDenied
}
