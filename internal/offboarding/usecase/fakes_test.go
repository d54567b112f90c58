package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
	talentDomain "github.com/allisson/exitflow/internal/talent/domain"
	userDomain "github.com/allisson/exitflow/internal/user/domain"
)

// clone copies v through JSON so stored records never alias the caller's.
func clone[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

// memoryTenant is an in-memory tenant database.
type memoryTenant struct {
	mu sync.Mutex

	requests    map[uuid.UUID]*domain.OffboardingRequest
	tasks       map[uuid.UUID]*domain.OffboardingTask
	assets      map[uuid.UUID]*domain.AssetClearance
	handovers   map[uuid.UUID]*domain.HandoverDetail
	settlements map[uuid.UUID]*domain.FinalSettlement
	feedback    map[uuid.UUID]*domain.ExitFeedback
	employees   map[uuid.UUID]*employeeDomain.Employee
	users       []*userDomain.User
	candidates  []*talentDomain.Candidate
	pool        []*talentDomain.TalentPoolEntry
	intents     map[uuid.UUID]*outboxDomain.OutboxEvent

	employeeUpdates    int
	terminationUpdates int
	candidateRenames   int
	createHandoverErr  error
	markTerminatedErr  error
	createCandidateErr error
	getEmployeeErr     error
	listUsersErr       error
}

func newMemoryTenant() *memoryTenant {
	return &memoryTenant{
		requests:    map[uuid.UUID]*domain.OffboardingRequest{},
		tasks:       map[uuid.UUID]*domain.OffboardingTask{},
		assets:      map[uuid.UUID]*domain.AssetClearance{},
		handovers:   map[uuid.UUID]*domain.HandoverDetail{},
		settlements: map[uuid.UUID]*domain.FinalSettlement{},
		feedback:    map[uuid.UUID]*domain.ExitFeedback{},
		employees:   map[uuid.UUID]*employeeDomain.Employee{},
		intents:     map[uuid.UUID]*outboxDomain.OutboxEvent{},
	}
}

func (m *memoryTenant) repositories() *Repositories {
	return &Repositories{
		TxManager:   memoryTx{},
		Requests:    &memoryRequests{m},
		Tasks:       &memoryTasks{m},
		Assets:      &memoryAssets{m},
		Handovers:   &memoryHandovers{m},
		Settlements: &memorySettlements{m},
		Feedback:    &memoryFeedback{m},
		Employees:   &memoryEmployees{m},
		Users:       &memoryUsers{m},
		Candidates:  &memoryCandidates{m},
		TalentPool:  &memoryTalentPool{m},
		Intents:     &memoryIntents{m},
	}
}

func (m *memoryTenant) addEmployee(e *employeeDomain.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = clone(e)
}

func (m *memoryTenant) employee(id uuid.UUID) *employeeDomain.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.employees[id])
}

func (m *memoryTenant) request(id uuid.UUID) *domain.OffboardingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.requests[id])
}

func (m *memoryTenant) intentsFor(requestID uuid.UUID) []*outboxDomain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*outboxDomain.OutboxEvent
	for _, e := range m.intents {
		if e.AggregateID == requestID {
			out = append(out, clone(e))
		}
	}
	return out
}

// memoryTenants resolves tenant ids to in-memory databases.
type memoryTenants map[string]*memoryTenant

func (t memoryTenants) ForTenant(_ context.Context, tenantID string) (*Repositories, error) {
	tenant, ok := t[tenantID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "tenant %q", tenantID)
	}
	return tenant.repositories(), nil
}

type memoryTx struct{}

func (memoryTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryRequests struct{ m *memoryTenant }

func (r *memoryRequests) Create(_ context.Context, req *domain.OffboardingRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.requests {
		if existing.EmployeeID == req.EmployeeID && !existing.IsTerminal() {
			return domain.ErrActiveRequestExists
		}
	}
	r.m.requests[req.ID] = clone(req)
	return nil
}

func (r *memoryRequests) GetByID(_ context.Context, id uuid.UUID) (*domain.OffboardingRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return clone(req), nil
}

func (r *memoryRequests) FindActiveByEmployee(
	_ context.Context,
	employeeID uuid.UUID,
) (*domain.OffboardingRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, req := range r.m.requests {
		if req.EmployeeID == employeeID && !req.IsTerminal() {
			return clone(req), nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *memoryRequests) Update(_ context.Context, req *domain.OffboardingRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.requests[req.ID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if stored.Version != req.Version {
		return domain.ErrStaleRequest
	}
	req.Version++
	r.m.requests[req.ID] = clone(req)
	return nil
}

func (r *memoryRequests) List(_ context.Context, filter ListFilter) ([]*domain.OffboardingRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.OffboardingRequest
	for _, req := range r.m.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Stage != "" && req.CurrentStage != filter.Stage {
			continue
		}
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, clone(req))
	}
	return out, nil
}

type memoryTasks struct{ m *memoryTenant }

func (r *memoryTasks) CreateBatch(_ context.Context, tasks []*domain.OffboardingTask) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range tasks {
		if _, ok := r.m.tasks[t.ID]; ok {
			return apperrors.Wrap(apperrors.ErrConflict, "task exists")
		}
	}
	for _, t := range tasks {
		r.m.tasks[t.ID] = clone(t)
	}
	return nil
}

func (r *memoryTasks) GetByID(_ context.Context, id uuid.UUID) (*domain.OffboardingTask, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return clone(t), nil
}

func (r *memoryTasks) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*domain.OffboardingTask, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.OffboardingTask
	for _, t := range r.m.tasks {
		if t.RequestID == requestID {
			out = append(out, clone(t))
		}
	}
	return out, nil
}

func (r *memoryTasks) Update(_ context.Context, task *domain.OffboardingTask) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.m.tasks[task.ID] = clone(task)
	return nil
}

type memoryAssets struct{ m *memoryTenant }

func (r *memoryAssets) Create(_ context.Context, a *domain.AssetClearance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.assets[a.RequestID] = clone(a)
	return nil
}

func (r *memoryAssets) GetByRequest(_ context.Context, requestID uuid.UUID) (*domain.AssetClearance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.assets[requestID]
	if !ok {
		return nil, domain.ErrAssetClearanceNotFound
	}
	return clone(a), nil
}

func (r *memoryAssets) Update(_ context.Context, a *domain.AssetClearance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.assets[a.RequestID] = clone(a)
	return nil
}

type memoryHandovers struct{ m *memoryTenant }

func (r *memoryHandovers) Create(_ context.Context, h *domain.HandoverDetail) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createHandoverErr != nil {
		return r.m.createHandoverErr
	}
	r.m.handovers[h.RequestID] = clone(h)
	return nil
}

func (r *memoryHandovers) GetByRequest(_ context.Context, requestID uuid.UUID) (*domain.HandoverDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	h, ok := r.m.handovers[requestID]
	if !ok {
		return nil, domain.ErrHandoverNotFound
	}
	return clone(h), nil
}

func (r *memoryHandovers) Update(_ context.Context, h *domain.HandoverDetail) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.handovers[h.RequestID] = clone(h)
	return nil
}

type memorySettlements struct{ m *memoryTenant }

func (r *memorySettlements) Create(_ context.Context, s *domain.FinalSettlement) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.settlements[s.RequestID] = clone(s)
	return nil
}

func (r *memorySettlements) GetByRequest(_ context.Context, requestID uuid.UUID) (*domain.FinalSettlement, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.settlements[requestID]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	return clone(s), nil
}

func (r *memorySettlements) Update(_ context.Context, s *domain.FinalSettlement) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.settlements[s.RequestID] = clone(s)
	return nil
}

type memoryFeedback struct{ m *memoryTenant }

func (r *memoryFeedback) Create(_ context.Context, f *domain.ExitFeedback) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.feedback[f.RequestID] = clone(f)
	return nil
}

func (r *memoryFeedback) GetByRequest(_ context.Context, requestID uuid.UUID) (*domain.ExitFeedback, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.feedback[requestID]
	if !ok {
		return nil, domain.ErrFeedbackNotFound
	}
	return clone(f), nil
}

func (r *memoryFeedback) Update(_ context.Context, f *domain.ExitFeedback) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.feedback[f.RequestID] = clone(f)
	return nil
}

type memoryEmployees struct{ m *memoryTenant }

func (r *memoryEmployees) GetByID(_ context.Context, id uuid.UUID) (*employeeDomain.Employee, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.getEmployeeErr != nil {
		return nil, r.m.getEmployeeErr
	}
	e, ok := r.m.employees[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "employee not found")
	}
	return clone(e), nil
}

func (r *memoryEmployees) Update(_ context.Context, e *employeeDomain.Employee) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.employeeUpdates++
	r.m.employees[e.ID] = clone(e)
	return nil
}

func (r *memoryEmployees) MarkTerminated(_ context.Context, id uuid.UUID, terminatedAt time.Time, reason string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.markTerminatedErr != nil {
		return r.m.markTerminatedErr
	}
	e, ok := r.m.employees[id]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "employee not found")
	}
	r.m.terminationUpdates++
	e.MarkTerminated(terminatedAt, reason)
	return nil
}

type memoryUsers struct{ m *memoryTenant }

func (r *memoryUsers) ListActiveByRole(_ context.Context, role authDomain.Role, limit int) ([]*userDomain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.listUsersErr != nil {
		return nil, r.m.listUsersErr
	}
	var out []*userDomain.User
	for _, u := range r.m.users {
		if u.Role == role && u.IsActive && len(out) < limit {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

type memoryCandidates struct{ m *memoryTenant }

func (r *memoryCandidates) Create(_ context.Context, c *talentDomain.Candidate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createCandidateErr != nil {
		return r.m.createCandidateErr
	}
	r.m.candidates = append(r.m.candidates, clone(c))
	return nil
}

func (r *memoryCandidates) FindExEmployee(
	_ context.Context,
	key talentDomain.ExEmployeeKey,
) (*talentDomain.Candidate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.candidates {
		if (c.ExEmployeeID != nil && *c.ExEmployeeID == key.EmployeeID) ||
			c.Email == talentDomain.NormalizeEmail(key.Email) {
			return clone(c), nil
		}
	}
	return nil, talentDomain.ErrCandidateNotFound
}

func (r *memoryCandidates) UpdateName(_ context.Context, c *talentDomain.Candidate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, existing := range r.m.candidates {
		if existing.ID == c.ID {
			r.m.candidates[i] = clone(c)
			r.m.candidateRenames++
			return nil
		}
	}
	return talentDomain.ErrCandidateNotFound
}

type memoryTalentPool struct{ m *memoryTenant }

func (r *memoryTalentPool) Create(_ context.Context, e *talentDomain.TalentPoolEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.pool {
		if existing.ExEmployeeID == e.ExEmployeeID {
			return talentDomain.ErrDuplicateExEmployee
		}
	}
	r.m.pool = append(r.m.pool, clone(e))
	return nil
}

func (r *memoryTalentPool) FindExEmployee(
	_ context.Context,
	key talentDomain.ExEmployeeKey,
) (*talentDomain.TalentPoolEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.pool {
		if e.ExEmployeeID == key.EmployeeID {
			return clone(e), nil
		}
	}
	return nil, talentDomain.ErrTalentPoolEntryNotFound
}

type memoryIntents struct{ m *memoryTenant }

func (r *memoryIntents) Create(_ context.Context, e *outboxDomain.OutboxEvent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.intents[e.ID] = clone(e)
	return nil
}

func (r *memoryIntents) Update(_ context.Context, e *outboxDomain.OutboxEvent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.intents[e.ID] = clone(e)
	return nil
}

// recordingNotifier keeps every notification it is asked to send.
type recordingNotifier struct {
	mu       sync.Mutex
	err      error
	messages []sentNotification
}

type sentNotification struct {
	recipient uuid.UUID
	message   string
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID uuid.UUID, message string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, sentNotification{recipient: recipientID, message: message})
	return nil
}

func (n *recordingNotifier) sentTo(recipient uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.messages {
		if m.recipient == recipient {
			count++
		}
	}
	return count
}
