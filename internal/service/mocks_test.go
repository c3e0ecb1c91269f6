package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appErrors "github.com/unclebandit/purchase-mailchimp-sync/internal/errors"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/mailchimp"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
)

// Mock repositories

type MockPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[int]*model.Purchase
	marked    map[int]time.Time
	lastQuery repository.PurchaseQuery
}

func NewMockPurchaseRepo(ps ...*model.Purchase) *MockPurchaseRepo {
	m := &MockPurchaseRepo{purchases: map[int]*model.Purchase{}, marked: map[int]time.Time{}}
	for _, p := range ps {
		m.purchases[p.ID] = p
	}
	return m
}

func (m *MockPurchaseRepo) GetByID(ctx context.Context, id int) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return nil, appErrors.NewPurchaseNotFound(id)
	}
	return p, nil
}

func (m *MockPurchaseRepo) Find(ctx context.Context, q repository.PurchaseQuery) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	out := []*model.Purchase{}
	for _, p := range m.purchases {
		if matchesQuery(q, p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// matchesQuery is the in-memory counterpart of PurchaseRepository.Find.
func matchesQuery(q repository.PurchaseQuery, p *model.Purchase) bool {
	if q.None {
		return false
	}
	if q.ContactID != nil {
		owner, ok := p.OwnerID()
		if !ok || owner != *q.ContactID {
			return false
		}
	}
	if q.From != nil && p.PurchasedAt.Before(*q.From) {
		return false
	}
	if q.To != nil && p.PurchasedAt.After(*q.To) {
		return false
	}
	return true
}

func (m *MockPurchaseRepo) MarkSynced(ctx context.Context, id int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked[id] = at
	return nil
}

type MockContactRepo struct {
	contacts map[int]*model.Contact
	err      error
}

func NewMockContactRepo(cs ...*model.Contact) *MockContactRepo {
	m := &MockContactRepo{contacts: map[int]*model.Contact{}}
	for _, c := range cs {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *MockContactRepo) GetByID(ctx context.Context, id int) (*model.Contact, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.contacts[id], nil
}

func (m *MockContactRepo) GetByEmail(ctx context.Context, email string) (*model.Contact, error) {
	for _, c := range m.contacts {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

type MockSettingsRepo struct {
	mu    sync.Mutex
	cfg   model.SyncConfig
	saves []model.SyncConfig
}

func (m *MockSettingsRepo) Load(ctx context.Context, module string) (*model.SyncConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.cfg
	return &cfg, nil
}

func (m *MockSettingsRepo) Save(ctx context.Context, module string, cfg *model.SyncConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = *cfg
	m.saves = append(m.saves, *cfg)
	return nil
}

// MockMailchimp records every Subscribe call
type MockMailchimp struct {
	mu    sync.Mutex
	calls []mailchimp.Member
	err   error
}

func (m *MockMailchimp) Subscribe(ctx context.Context, s mailchimp.Settings, member mailchimp.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, member)
	return m.err
}

func (m *MockMailchimp) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var errBoom = errors.New("boom")

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

const stripeSession = `{
  "id": "cs_test_1",
  "line_items": {
    "object": "list",
    "data": [
      {"description": "Ignored desc", "price": {"nickname": "nick", "product": {"name": "Course A"}}},
      {"description": "Ebook", "price": {"nickname": "ebook-nick", "product": "prod_123"}},
      {"description": "", "price": {"nickname": "Workshop"}},
      {"description": "Course A", "price": {}}
    ]
  }
}`
