package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository. Any Func field,
// when set, overrides the default map-backed behavior.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc func(ctx context.Context, id string) (*domain.Account, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Add(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockJournalRepository is an in-memory JournalRepository.
type MockJournalRepository struct {
	mu       sync.RWMutex
	journals map[string]*domain.Journal

	CreateJournalFunc      func(ctx context.Context, tx usecase.Transaction, journal *domain.Journal) error
	MarkPostedFunc         func(ctx context.Context, tx usecase.Transaction, journalID string, postedAt time.Time) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Journal, error)
	SumPostedBeforeFunc    func(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error)
	SumPostedInRangeFunc   func(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error)
	ListPostedLinesFunc    func(ctx context.Context, accountID string, start, end time.Time) ([]*domain.EntryLine, error)
	SumPostedByAccountFunc func(ctx context.Context, asOf time.Time) ([]usecase.AccountTotals, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{journals: make(map[string]*domain.Journal)}
}

func (m *MockJournalRepository) CreateJournal(ctx context.Context, tx usecase.Transaction, journal *domain.Journal) error {
	if m.CreateJournalFunc != nil {
		return m.CreateJournalFunc(ctx, tx, journal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *journal
	m.journals[journal.ID] = &copied
	return nil
}

func (m *MockJournalRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, journalID string, postedAt time.Time) error {
	if m.MarkPostedFunc != nil {
		return m.MarkPostedFunc(ctx, tx, journalID, postedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.journals[journalID]
	if !ok {
		return domain.ErrJournalNotFound
	}
	return j.Post(postedAt)
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id string) (*domain.Journal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.journals[id]; ok {
		return j, nil
	}
	return nil, domain.ErrJournalNotFound
}

// Posted returns all journals marked posted, for test assertions.
func (m *MockJournalRepository) Posted() []*domain.Journal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var posted []*domain.Journal
	for _, j := range m.journals {
		if j.Status == domain.JournalPosted {
			posted = append(posted, j)
		}
	}
	return posted
}

func (m *MockJournalRepository) SumPostedBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumPostedBeforeFunc != nil {
		return m.SumPostedBeforeFunc(ctx, accountID, before)
	}
	return decimal.Zero, decimal.Zero, nil
}

func (m *MockJournalRepository) SumPostedInRange(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumPostedInRangeFunc != nil {
		return m.SumPostedInRangeFunc(ctx, accountID, start, end)
	}
	return decimal.Zero, decimal.Zero, nil
}

func (m *MockJournalRepository) ListPostedLines(ctx context.Context, accountID string, start, end time.Time) ([]*domain.EntryLine, error) {
	if m.ListPostedLinesFunc != nil {
		return m.ListPostedLinesFunc(ctx, accountID, start, end)
	}
	return nil, nil
}

func (m *MockJournalRepository) SumPostedByAccount(ctx context.Context, asOf time.Time) ([]usecase.AccountTotals, error) {
	if m.SumPostedByAccountFunc != nil {
		return m.SumPostedByAccountFunc(ctx, asOf)
	}
	return nil, nil
}

// MockTemplateRepository is an in-memory TemplateRepository.
type MockTemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]*domain.Template

	GetByIDFunc     func(ctx context.Context, id string) (*domain.Template, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*domain.Template, error)
	RecordUsageFunc func(ctx context.Context, id string, usedAt time.Time) error
}

func NewMockTemplateRepository() *MockTemplateRepository {
	return &MockTemplateRepository{templates: make(map[string]*domain.Template)}
}

func (m *MockTemplateRepository) Add(template *domain.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = template
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tpl, ok := m.templates[id]; ok {
		return tpl, nil
	}
	return nil, domain.ErrTemplateNotFound
}

func (m *MockTemplateRepository) List(ctx context.Context, limit, offset int) ([]*domain.Template, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var templates []*domain.Template
	for _, tpl := range m.templates {
		templates = append(templates, tpl)
	}
	return templates, nil
}

func (m *MockTemplateRepository) RecordUsage(ctx context.Context, id string, usedAt time.Time) error {
	if m.RecordUsageFunc != nil {
		return m.RecordUsageFunc(ctx, id, usedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if tpl, ok := m.templates[id]; ok {
		tpl.UseCount++
		tpl.LastUsedAt = &usedAt
	}
	return nil
}

// MockScheduleRepository is an in-memory ScheduleRepository.
type MockScheduleRepository struct {
	mu        sync.RWMutex
	schedules map[string]*domain.Schedule
	entries   map[string]*domain.ScheduleEntry

	GetByIDFunc               func(ctx context.Context, id string) (*domain.Schedule, error)
	GetEntryByIDFunc          func(ctx context.Context, entryID string) (*domain.ScheduleEntry, error)
	ListPendingByScheduleFunc func(ctx context.Context, scheduleID string) ([]*domain.ScheduleEntry, error)
	ListDueForAutoPostFunc    func(ctx context.Context, asOf time.Time) ([]*domain.ScheduleEntry, error)
	UpdateEntryFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error
	RecomputeCountersFunc     func(ctx context.Context, scheduleID string) error

	RecomputeCalls int
}

func NewMockScheduleRepository() *MockScheduleRepository {
	return &MockScheduleRepository{
		schedules: make(map[string]*domain.Schedule),
		entries:   make(map[string]*domain.ScheduleEntry),
	}
}

func (m *MockScheduleRepository) AddSchedule(s *domain.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = s
}

func (m *MockScheduleRepository) AddEntry(e *domain.ScheduleEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, domain.ErrScheduleNotFound
}

func (m *MockScheduleRepository) GetEntryByID(ctx context.Context, entryID string) (*domain.ScheduleEntry, error) {
	if m.GetEntryByIDFunc != nil {
		return m.GetEntryByIDFunc(ctx, entryID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[entryID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrScheduleEntryNotFound
}

func (m *MockScheduleRepository) ListPendingBySchedule(ctx context.Context, scheduleID string) ([]*domain.ScheduleEntry, error) {
	if m.ListPendingByScheduleFunc != nil {
		return m.ListPendingByScheduleFunc(ctx, scheduleID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pending []*domain.ScheduleEntry
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID && e.Status == domain.SchedulePending {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (m *MockScheduleRepository) ListDueForAutoPost(ctx context.Context, asOf time.Time) ([]*domain.ScheduleEntry, error) {
	if m.ListDueForAutoPostFunc != nil {
		return m.ListDueForAutoPostFunc(ctx, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.ScheduleEntry
	for _, e := range m.entries {
		s, ok := m.schedules[e.ScheduleID]
		if !ok || !s.Active || !s.AutoPost {
			continue
		}
		if e.Status == domain.SchedulePending && !e.PeriodEnd.After(asOf) {
			due = append(due, e)
		}
	}
	return due, nil
}

// UpdateEntry mirrors the repository's pending-only guard: an entry already
// posted or skipped cannot be rewritten.
func (m *MockScheduleRepository) UpdateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error {
	if m.UpdateEntryFunc != nil {
		return m.UpdateEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.ID]
	if !ok || stored.Status != domain.SchedulePending {
		return domain.ErrEntryNotPending
	}
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockScheduleRepository) RecomputeCounters(ctx context.Context, scheduleID string) error {
	if m.RecomputeCountersFunc != nil {
		return m.RecomputeCountersFunc(ctx, scheduleID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputeCalls++
	s, ok := m.schedules[scheduleID]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	posted, pending := 0, 0
	for _, e := range m.entries {
		if e.ScheduleID != scheduleID {
			continue
		}
		switch e.Status {
		case domain.SchedulePosted:
			posted++
		case domain.SchedulePending:
			pending++
		}
	}
	s.PostedCount = posted
	s.PendingCount = pending
	return nil
}

// MockDocumentRepository serves a fixed set of outstanding documents.
type MockDocumentRepository struct {
	Documents []*domain.OutstandingDocument

	ListOutstandingFunc func(ctx context.Context, kind domain.DocumentKind, asOf time.Time) ([]*domain.OutstandingDocument, error)
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{}
}

func (m *MockDocumentRepository) ListOutstanding(ctx context.Context, kind domain.DocumentKind, asOf time.Time) ([]*domain.OutstandingDocument, error) {
	if m.ListOutstandingFunc != nil {
		return m.ListOutstandingFunc(ctx, kind, asOf)
	}
	var docs []*domain.OutstandingDocument
	for _, d := range m.Documents {
		if d.Kind == kind {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// MockTransaction records whether it was committed or rolled back.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu           sync.Mutex
	Transactions []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator generates sequential IDs unless overridden.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
