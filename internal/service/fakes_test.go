package service

import (
	"context"
	"sort"
	"time"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo implementations'
// observable behavior, including the unique (kind, clientId, resourceId)
// assignment key and the set-null link slot semantics.

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	stored := *user
	return f.add(&stored).ID, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	sortUsers(out)
	return out, nil
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	sortUsers(out)
	return out, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, firstName, lastName string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id primitive.ObjectID, role domain.Role) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SetLinkSlot(_ context.Context, clientID primitive.ObjectID, professionalRole domain.Role, professionalID *primitive.ObjectID) error {
	client, ok := f.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	switch professionalRole {
	case domain.RoleNutritionist:
		client.MyNutritionistID = professionalID
	case domain.RoleTrainer:
		client.MyTrainerID = professionalID
	default:
		return repository.ErrUpdateFailed
	}
	return nil
}

func (f *fakeUserRepo) GetLinkedClients(_ context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		slot := user.LinkSlot(professionalRole)
		if slot != nil && *slot == professionalID {
			out = append(out, *user)
		}
	}
	sortUsers(out)
	return out, nil
}

func (f *fakeUserRepo) ClearLinkSlots(_ context.Context, professionalID primitive.ObjectID, professionalRole domain.Role) error {
	for _, user := range f.users {
		slot := user.LinkSlot(professionalRole)
		if slot != nil && *slot == professionalID {
			switch professionalRole {
			case domain.RoleNutritionist:
				user.MyNutritionistID = nil
			case domain.RoleTrainer:
				user.MyTrainerID = nil
			}
		}
	}
	return nil
}

func sortUsers(users []domain.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
}

// --- assignments ---

type assignmentKey struct {
	kind     domain.AssignmentKind
	client   primitive.ObjectID
	resource primitive.ObjectID
}

type fakeAssignmentRepo struct {
	assignments map[assignmentKey]*domain.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[assignmentKey]*domain.Assignment)}
}

func (f *fakeAssignmentRepo) Upsert(_ context.Context, assignment *domain.Assignment) (*domain.Assignment, error) {
	key := assignmentKey{assignment.Kind, assignment.ClientID, assignment.ResourceID}
	now := time.Now()

	existing, ok := f.assignments[key]
	if !ok {
		stored := *assignment
		stored.ID = primitive.NewObjectID()
		stored.AssignedAt = now
		stored.UpdatedAt = now
		f.assignments[key] = &stored
		copied := stored
		return &copied, nil
	}

	existing.AssignedByID = assignment.AssignedByID
	existing.StartDate = assignment.StartDate
	existing.EndDate = assignment.EndDate
	existing.IsActive = assignment.IsActive
	existing.AssignedAt = now
	existing.UpdatedAt = now
	copied := *existing
	return &copied, nil
}

func (f *fakeAssignmentRepo) Get(_ context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) (*domain.Assignment, error) {
	assignment, ok := f.assignments[assignmentKey{kind, clientID, resourceID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, kind domain.AssignmentKind, clientID, resourceID primitive.ObjectID) error {
	key := assignmentKey{kind, clientID, resourceID}
	if _, ok := f.assignments[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.assignments, key)
	return nil
}

func (f *fakeAssignmentRepo) GetByClient(_ context.Context, kind domain.AssignmentKind, clientID primitive.ObjectID) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for key, assignment := range f.assignments {
		if key.kind == kind && key.client == clientID {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GetByProfessional(_ context.Context, kind domain.AssignmentKind, professionalID primitive.ObjectID) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for key, assignment := range f.assignments {
		if key.kind == kind && assignment.AssignedByID == professionalID {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) DeleteByClient(_ context.Context, clientID primitive.ObjectID) error {
	for key := range f.assignments {
		if key.client == clientID {
			delete(f.assignments, key)
		}
	}
	return nil
}

func (f *fakeAssignmentRepo) DeleteByResource(_ context.Context, kind domain.AssignmentKind, resourceID primitive.ObjectID) error {
	for key := range f.assignments {
		if key.kind == kind && key.resource == resourceID {
			delete(f.assignments, key)
		}
	}
	return nil
}

// --- nutrition plans ---

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.NutritionPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.NutritionPlan)}
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	stored := *plan
	f.plans[plan.ID] = &stored
	return plan.ID, nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanRepo) GetAll(_ context.Context) ([]domain.NutritionPlan, error) {
	var out []domain.NutritionPlan
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *domain.NutritionPlan) error {
	if _, ok := f.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *plan
	f.plans[plan.ID] = &stored
	return nil
}

func (f *fakePlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

// --- workout routines ---

type fakeRoutineRepo struct {
	routines map[primitive.ObjectID]*domain.WorkoutRoutine
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]*domain.WorkoutRoutine)}
}

func (f *fakeRoutineRepo) Create(_ context.Context, routine *domain.WorkoutRoutine) (primitive.ObjectID, error) {
	if routine.ID.IsZero() {
		routine.ID = primitive.NewObjectID()
	}
	stored := *routine
	f.routines[routine.ID] = &stored
	return routine.ID, nil
}

func (f *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutRoutine, error) {
	routine, ok := f.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *routine
	return &copied, nil
}

func (f *fakeRoutineRepo) GetAll(_ context.Context) ([]domain.WorkoutRoutine, error) {
	var out []domain.WorkoutRoutine
	for _, routine := range f.routines {
		out = append(out, *routine)
	}
	return out, nil
}

func (f *fakeRoutineRepo) Update(_ context.Context, routine *domain.WorkoutRoutine) error {
	if _, ok := f.routines[routine.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *routine
	f.routines[routine.ID] = &stored
	return nil
}

func (f *fakeRoutineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.routines, id)
	return nil
}

// --- progress entries ---

type fakeProgressRepo struct {
	entries map[primitive.ObjectID]*domain.ProgressEntry
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{entries: make(map[primitive.ObjectID]*domain.ProgressEntry)}
}

func (f *fakeProgressRepo) Create(_ context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	stored := *entry
	f.entries[entry.ID] = &stored
	return entry.ID, nil
}

func (f *fakeProgressRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeProgressRepo) GetByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	var out []domain.ProgressEntry
	for _, entry := range f.entries {
		if entry.ClientID == clientID {
			out = append(out, *entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.After(out[j].EntryDate) })
	return out, nil
}

func (f *fakeProgressRepo) Update(_ context.Context, entry *domain.ProgressEntry) error {
	stored, ok := f.entries[entry.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *entry
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	f.entries[entry.ID] = &updated
	return nil
}

func (f *fakeProgressRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeProgressRepo) DeleteByClient(_ context.Context, clientID primitive.ObjectID) error {
	for id, entry := range f.entries {
		if entry.ClientID == clientID {
			delete(f.entries, id)
		}
	}
	return nil
}

// --- file storage ---

type fakeStorage struct {
	deleted []string
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

// --- test user builders ---

func newTestClient() *domain.User {
	return &domain.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Casey",
		LastName:  "Client",
		Email:     "casey@example.com",
		Role:      domain.RoleClient,
	}
}

func newTestNutritionist() *domain.User {
	return &domain.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Nadia",
		LastName:  "Nutritionist",
		Email:     "nadia@example.com",
		Role:      domain.RoleNutritionist,
	}
}

func newTestTrainer() *domain.User {
	return &domain.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Taylor",
		LastName:  "Trainer",
		Email:     "taylor@example.com",
		Role:      domain.RoleTrainer,
	}
}

func newTestAdmin() *domain.User {
	return &domain.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     "ada@example.com",
		Role:      domain.RoleAdmin,
	}
}
