package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errInfra = errors.New("database is unavailable")

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Clock ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Pool repository ---

// memPoolRepo 以内存模拟条件更新语义的仓储
type memPoolRepo[T domain.Shareable] struct {
	domain.PoolRepository[T]

	mu     sync.Mutex
	policy domain.Policy
	clone  func(T) T
	items  map[int64]T
	nextID int64

	getErrs        int
	forceConflicts int
	beforeWrite    func()
	markCalls      int
	lastFilter     domain.PoolFilter
}

func newMemPoolRepo[T domain.Shareable](policy domain.Policy, clone func(T) T) *memPoolRepo[T] {
	return &memPoolRepo[T]{policy: policy, clone: clone, items: map[int64]T{}}
}

func cloneRide(r *domain.Ride) *domain.Ride {
	c := *r
	c.Participants = append([]domain.Participant{}, r.Participants...)
	return &c
}

func cloneFoodOrder(f *domain.FoodOrder) *domain.FoodOrder {
	c := *f
	c.Participants = append([]domain.Participant{}, f.Participants...)
	c.Offers = append([]domain.FoodOffer{}, f.Offers...)
	c.Items = append([]domain.FoodItem{}, f.Items...)
	return &c
}

// put 绕过 Create 直接写入，用于构造已过期等状态
func (m *memPoolRepo[T]) put(item T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.Base().ID = m.nextID
	if item.Base().Participants == nil {
		item.Base().Participants = []domain.Participant{}
	}
	m.items[m.nextID] = m.clone(item)
	return item
}

func (m *memPoolRepo[T]) stored(id int64) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clone(m.items[id])
}

func (m *memPoolRepo[T]) GetByID(ctx context.Context, id int64) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.getErrs > 0 {
		m.getErrs--
		return zero, errInfra
	}
	item, ok := m.items[id]
	if !ok {
		return zero, gorm.ErrRecordNotFound
	}
	return m.clone(item), nil
}

func (m *memPoolRepo[T]) Search(ctx context.Context, filter *domain.PoolFilter) ([]T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = *filter

	var out []T
	for _, item := range m.items {
		p := item.Base()
		if !filter.IncludeExpired && (p.Expired || !p.ExpiryTime.After(filter.Now)) {
			continue
		}
		out = append(out, m.clone(item))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Base(), out[j].Base()
		if !a.ExpiryTime.Equal(b.ExpiryTime) {
			return a.ExpiryTime.Before(b.ExpiryTime)
		}
		return a.ID < b.ID
	})

	total := int64(len(out))
	if filter.Offset >= len(out) {
		return []T{}, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *memPoolRepo[T]) list(match func(p *domain.Pool) bool) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, item := range m.items {
		if match(item.Base()) {
			out = append(out, m.clone(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base().ID > out[j].Base().ID })
	return out
}

func (m *memPoolRepo[T]) ListByOwner(ctx context.Context, uid int64) ([]T, error) {
	return m.list(func(p *domain.Pool) bool { return p.OwnerUID == uid }), nil
}

func (m *memPoolRepo[T]) ListByParticipant(ctx context.Context, uid int64) ([]T, error) {
	return m.list(func(p *domain.Pool) bool { return p.HasParticipant(uid) }), nil
}

func (m *memPoolRepo[T]) Create(ctx context.Context, item T) (T, error) {
	item.Base().CreatedAt = testNow
	item.Base().UpdatedAt = testNow
	return m.put(item), nil
}

func (m *memPoolRepo[T]) MarkExpired(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	item, ok := m.items[id]
	if !ok || item.Base().Expired {
		return false, nil
	}
	item.Base().Expired = true
	return true, nil
}

// writable 对应条件更新中的 expired = 0 AND expiry_time > now
func (m *memPoolRepo[T]) writable(id int64, now time.Time) (*domain.Pool, bool) {
	if m.forceConflicts > 0 {
		m.forceConflicts--
		return nil, false
	}
	item, ok := m.items[id]
	if !ok {
		return nil, false
	}
	p := item.Base()
	if p.Expired || !now.Before(p.ExpiryTime) {
		return nil, false
	}
	return p, true
}

func (m *memPoolRepo[T]) runBeforeWrite() {
	if m.beforeWrite != nil {
		hook := m.beforeWrite
		m.beforeWrite = nil
		hook()
	}
}

func (m *memPoolRepo[T]) AddParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	m.runBeforeWrite()
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.writable(id, now)
	if !ok || m.policy.AuthorizeJoin(p, uid) != nil {
		return domain.ErrPoolConflict
	}
	m.policy.Admit(p, uid, now)
	return nil
}

func (m *memPoolRepo[T]) RemoveParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	m.runBeforeWrite()
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.writable(id, now)
	if !ok || m.policy.AuthorizeLeave(p, uid) != nil {
		return domain.ErrPoolConflict
	}
	m.policy.Release(p, uid)
	return nil
}

func (m *memPoolRepo[T]) Delete(ctx context.Context, id, ownerUID int64) error {
	m.runBeforeWrite()
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || m.policy.AuthorizeDelete(item.Base(), ownerUID) != nil {
		return domain.ErrPoolConflict
	}
	delete(m.items, id)
	return nil
}

func (m *memPoolRepo[T]) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		p := item.Base()
		if !p.Expired && !p.ExpiryTime.After(now) {
			p.Expired = true
			n++
		}
	}
	return n, nil
}

type rideMockRepo struct {
	*memPoolRepo[*domain.Ride]
}

type foodMockRepo struct {
	*memPoolRepo[*domain.FoodOrder]
}

// --- User repositories ---

type userMockRepo struct {
	domain.UserRepository

	mu       sync.Mutex
	users    map[int64]*domain.User
	nextUID  int64
	listHits int
}

func newUserMockRepo(users ...*domain.User) *userMockRepo {
	m := &userMockRepo{users: map[int64]*domain.User{}}
	for _, u := range users {
		m.users[u.UID] = u
		if u.UID > m.nextUID {
			m.nextUID = u.UID
		}
	}
	return m
}

func (m *userMockRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[uid]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *userMockRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *userMockRepo) ListByUIDs(ctx context.Context, uids []int64) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listHits++
	var out []*domain.User
	for _, uid := range uids {
		if u, ok := m.users[uid]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *userMockRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	m.nextUID++
	c := *user
	c.UID = m.nextUID
	c.CreatedAt = testNow
	c.UpdatedAt = testNow
	m.users[c.UID] = &c
	out := c
	return &out, nil
}

type tokenMockRepo struct {
	domain.UserTokenRepository

	mu     sync.Mutex
	tokens map[string]*domain.UserToken
}

func newTokenMockRepo() *tokenMockRepo {
	return &tokenMockRepo{tokens: map[string]*domain.UserToken{}}
}

func (m *tokenMockRepo) Create(ctx context.Context, token *domain.UserToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *token
	m.tokens[token.TokenID] = &c
	return nil
}

func (m *tokenMockRepo) DeleteByTokenID(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[tokenID]; !ok {
		return false, nil
	}
	delete(m.tokens, tokenID)
	return true, nil
}

func (m *tokenMockRepo) DeleteByUID(ctx context.Context, uid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.UID == uid {
			delete(m.tokens, id)
		}
	}
	return nil
}

func (m *tokenMockRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tokens {
		if t.IsExpired(now) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *tokenMockRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// --- Fixtures ---

func testUsers() []*domain.User {
	return []*domain.User{
		{UID: 1, Name: "Owner", Email: "owner@campus.edu", Phone: "100"},
		{UID: 2, Name: "Bo", Email: "bo@campus.edu", Phone: "200"},
		{UID: 3, Name: "Cy", Email: "cy@campus.edu", Phone: "300"},
		{UID: 4, Name: "Di", Email: "di@campus.edu", Phone: "400"},
	}
}

func testConfig() *ServiceConfig {
	cfg := DefaultServiceConfig()
	cfg.Pool.RetryBackoff = time.Millisecond
	return cfg
}

type rideFixture struct {
	svc   RideService
	repo  *rideMockRepo
	clock *testClock
	users *userMockRepo
}

func newRideFixture(cfg *ServiceConfig) *rideFixture {
	if cfg == nil {
		cfg = testConfig()
	}
	users := newUserMockRepo(testUsers()...)
	dir, _ := NewUserDirectory(users, 16)
	repo := &rideMockRepo{newMemPoolRepo(domain.RidePolicy, cloneRide)}
	clock := newTestClock()
	return &rideFixture{
		svc:   NewRideService(repo, dir, clock, zap.NewNop(), cfg),
		repo:  repo,
		clock: clock,
		users: users,
	}
}

type foodFixture struct {
	svc   FoodOrderService
	repo  *foodMockRepo
	clock *testClock
}

func newFoodFixture(cfg *ServiceConfig) *foodFixture {
	if cfg == nil {
		cfg = testConfig()
	}
	users := newUserMockRepo(testUsers()...)
	dir, _ := NewUserDirectory(users, 16)
	repo := &foodMockRepo{newMemPoolRepo(domain.FoodPolicy, cloneFoodOrder)}
	clock := newTestClock()
	return &foodFixture{
		svc:   NewFoodOrderService(repo, dir, clock, zap.NewNop(), cfg),
		repo:  repo,
		clock: clock,
	}
}
