package service

import "errors"

// Business error kinds shared across services. Handlers translate these
// into HTTP status codes via errors.Is; services never panic on expected
// business conditions.
var (
	// ErrNotFound reports an absent professional, client or resource.
	ErrNotFound = errors.New("requested entity not found")

	// ErrRoleDenied reports a coarse role-gate failure: the requester's
	// role is not among those permitted for the operation class. Never
	// bypassed, not even for admins.
	ErrRoleDenied = errors.New("role does not permit this operation")

	// ErrOwnershipDenied reports a fine-grained failure: the requester
	// holds an acceptable role but does not own, did not create, or is
	// not linked to the specific resource. Admins bypass this check.
	ErrOwnershipDenied = errors.New("not the owner or creator of this resource")

	// ErrAlreadyLinkedElsewhere reports a link slot already occupied by a
	// different professional. The caller must unlink first.
	ErrAlreadyLinkedElsewhere = errors.New("client already linked to another professional")

	// ErrNotLinked reports an assignment or unlink across a pair that is
	// not currently linked.
	ErrNotLinked = errors.New("client is not linked to this professional")

	// ErrPersistenceConflict wraps store write failures such as duplicate
	// key violations. The only kind for which a caller retry makes sense.
	ErrPersistenceConflict = errors.New("persistence conflict")

	// ErrSelfDeletion reports an administrator attempting to delete
	// their own account.
	ErrSelfDeletion = errors.New("administrators cannot delete themselves")
)

// Authentication error kinds.
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)
