package service

import (
	"context"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentWindow carries the optional validity bounds and the advisory
// active flag supplied by the assigning professional.
type AssignmentWindow struct {
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool
}

// AssignmentView is the materialized assignment joined with resource and
// professional identity, as returned to callers.
type AssignmentView struct {
	Kind                domain.AssignmentKind `json:"kind"`
	ClientID            primitive.ObjectID    `json:"clientId"`
	ResourceID          primitive.ObjectID    `json:"resourceId"`
	ResourceName        string                `json:"resourceName"`
	ResourceDescription string                `json:"resourceDescription"`
	AssignedByID        primitive.ObjectID    `json:"assignedById"`
	AssignedByName      string                `json:"assignedByName"`
	AssignedAt          time.Time             `json:"assignedAt"`
	StartDate           *time.Time            `json:"startDate,omitempty"`
	EndDate             *time.Time            `json:"endDate,omitempty"`
	IsActive            bool                  `json:"isActive"`
}

func newAssignmentView(assignment *domain.Assignment, resourceName, resourceDescription, assignedByName string) AssignmentView {
	return AssignmentView{
		Kind:                assignment.Kind,
		ClientID:            assignment.ClientID,
		ResourceID:          assignment.ResourceID,
		ResourceName:        resourceName,
		ResourceDescription: resourceDescription,
		AssignedByID:        assignment.AssignedByID,
		AssignedByName:      assignedByName,
		AssignedAt:          assignment.AssignedAt,
		StartDate:           assignment.StartDate,
		EndDate:             assignment.EndDate,
		IsActive:            assignment.IsActive,
	}
}

func displayName(user *domain.User) string {
	if user == nil {
		return ""
	}
	if user.LastName == "" {
		return user.FirstName
	}
	return user.FirstName + " " + user.LastName
}

// validateAssignmentPair runs the shared pre-assignment checks for a kind:
// the professional must exist and hold the kind's assigning role, the
// client must exist and hold the client role, and the client's matching
// link slot must name exactly this professional (the linkage gate).
func validateAssignmentPair(
	ctx context.Context,
	userRepo repository.UserRepository,
	kind domain.AssignmentKind,
	professionalID, clientID primitive.ObjectID,
) (professional, client *domain.User, err error) {
	professional, err = userRepo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if professional.Role != kind.AssigningRole() {
		return nil, nil, ErrRoleDenied
	}

	client, err = userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if !client.IsClient() {
		return nil, nil, ErrRoleDenied
	}

	// Linkage gate: a professional may only assign resources to clients
	// explicitly linked to them.
	if !client.IsLinkedTo(professionalID, professional.Role) {
		return nil, nil, ErrNotLinked
	}

	return professional, client, nil
}
