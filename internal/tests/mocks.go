package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/redis"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// GetUser returns the stored user by ID (for test assertions).
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// CountUsers returns the number of users.
func (m *MockUserRepository) CountUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. MatchPair
// and CancelWithRelease honor the same atomicity contract as the Postgres
// implementation: either both rides transition or neither does.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount    int32
	MatchPairCallCount int32
	CancelCallCount    int32
	SweepCallCount     int32

	// Error injection
	CreateError         error
	FindCandidatesError error
	MatchPairError      error
	CancelError         error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) GetActiveForUser(ctx context.Context, userID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Ride
	for _, r := range m.rides {
		if r.UserID != userID || !r.Active() {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *MockRideRepository) SweepPast(ctx context.Context, userID string, now time.Time) (int64, error) {
	atomic.AddInt32(&m.SweepCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rides {
		if r.UserID == userID && r.Active() && !r.DepartureTime.After(now) {
			r.Status = domain.RideStatusCompleted
			r.MatchedRideID = ""
			n++
		}
	}
	return n, nil
}

func (m *MockRideRepository) FindMatchCandidates(ctx context.Context, q repository.MatchQuery) ([]*domain.Ride, error) {
	if m.FindCandidatesError != nil {
		return nil, m.FindCandidatesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.ID == q.RideID || r.UserID == q.UserID {
			continue
		}
		if r.Status != domain.RideStatusPending {
			continue
		}
		if r.FromLocation != q.From || r.ToLocation != q.To {
			continue
		}
		if r.DepartureTime.Before(q.WindowStart) || r.DepartureTime.After(q.WindowEnd) {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	// Oldest created first, like the ORDER BY in the real query.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) MatchPair(ctx context.Context, rideID, partnerID string) error {
	atomic.AddInt32(&m.MatchPairCallCount, 1)
	if m.MatchPairError != nil {
		return m.MatchPairError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrRideNotPending
	}
	partner, ok := m.rides[partnerID]
	if !ok {
		return repository.ErrRideNotPending
	}
	if ride.Status != domain.RideStatusPending || partner.Status != domain.RideStatusPending {
		return repository.ErrRideNotPending
	}
	ride.Status = domain.RideStatusMatched
	ride.MatchedRideID = partnerID
	partner.Status = domain.RideStatusMatched
	partner.MatchedRideID = rideID
	return nil
}

func (m *MockRideRepository) CancelWithRelease(ctx context.Context, rideID, partnerID string) error {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.CancelError != nil {
		return m.CancelError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok || !ride.Active() {
		return repository.ErrNotFound
	}
	ride.Status = domain.RideStatusCancelled
	ride.MatchedRideID = ""
	if partnerID != "" {
		if partner, ok := m.rides[partnerID]; ok && partner.Status == domain.RideStatusMatched {
			partner.Status = domain.RideStatusPending
			partner.MatchedRideID = ""
		}
	}
	return nil
}

// GetRide returns the stored ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// CountByStatus counts rides in the given status.
func (m *MockRideRepository) CountByStatus(status domain.RideStatus) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.rides {
		if r.Status == status {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRouteLock(ctx context.Context, from, to string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:route:" + from + "->" + to
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseRouteLock(ctx context.Context, from, to string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:route:"+from+"->"+to)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu    sync.RWMutex
	users map[string]*redis.CachedUser

	// Counters
	GetCallCount int32
	SetCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		users: make(map[string]*redis.CachedUser),
	}
}

func (m *MockCacheStore) GetUser(ctx context.Context, phone string) (*redis.CachedUser, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cached, ok := m.users[phone]
	if !ok {
		return nil, nil // Cache miss.
	}
	copy := *cached
	return &copy, nil
}

func (m *MockCacheStore) SetUser(ctx context.Context, user *redis.CachedUser) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *user
	m.users[user.PhoneNumber] = &copy
	return nil
}

// HasUser checks whether a phone number is cached.
func (m *MockCacheStore) HasUser(phone string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[phone]
	return ok
}

// ──────────────────────────────────────────────
// MOCK MAILER
// ──────────────────────────────────────────────

// MockMailer records sent verification codes.
type MockMailer struct {
	mu sync.Mutex

	// SentCodes maps recipient email to the last code sent.
	SentCodes map[string]string

	// Counters
	SendCallCount int32

	// Error injection
	SendError error
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{
		SentCodes: make(map[string]string),
	}
}

func (m *MockMailer) SendVerificationCode(toEmail, code string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentCodes[toEmail] = code
	return nil
}

// LastCode returns the last code sent to the given email.
func (m *MockMailer) LastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SentCodes[email]
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// SentMessage is one outbound SMS recorded by MockNotifier.
type SentMessage struct {
	To   string
	Body string
}

// MockNotifier records outbound SMS messages.
type MockNotifier struct {
	mu       sync.Mutex
	messages []SentMessage

	// Counters
	SendCallCount int32

	// Error injection
	SendError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, to, body string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{To: to, Body: body})
	return nil
}

// Messages returns all recorded messages.
func (m *MockNotifier) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// MessagesTo returns the messages sent to the given number.
func (m *MockNotifier) MessagesTo(to string) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, msg := range m.messages {
		if msg.To == to {
			out = append(out, msg)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// MOCK EXTRACTOR
// ──────────────────────────────────────────────

// MockExtractor returns a fixed trip or a fixed error.
type MockExtractor struct {
	Trip *domain.Trip
	Err  error

	// Counters
	ExtractCallCount int32
}

func (m *MockExtractor) Extract(ctx context.Context, text string, now time.Time) (*domain.Trip, error) {
	atomic.AddInt32(&m.ExtractCallCount, 1)
	if m.Err != nil {
		return nil, m.Err
	}
	copy := *m.Trip
	return &copy, nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockSMTPDown     = errors.New("mock: smtp connection refused")
)
