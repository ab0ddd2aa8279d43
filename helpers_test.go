package pulseauth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/blupulse/pulseauth/contact"
	"github.com/blupulse/pulseauth/password"
)

// fastPasswordConfig keeps argon2 at its floor so tests stay quick.
var fastPasswordConfig = password.Config{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   16,
}

type mockEndUsers struct {
	mu    sync.Mutex
	users map[string]*EndUserRecord
}

func newMockEndUsers() *mockEndUsers {
	return &mockEndUsers{users: make(map[string]*EndUserRecord)}
}

func (m *mockEndUsers) add(record EndUserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[record.ID] = &record
}

func (m *mockEndUsers) get(id string) EndUserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

func (m *mockEndUsers) GetByContact(_ context.Context, value string, channel contact.Channel) (*EndUserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if (channel == contact.ChannelEmail && user.Email == value) ||
			(channel == contact.ChannelMessaging && user.Phone == value) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockEndUsers) GetByID(_ context.Context, id string) (*EndUserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *mockEndUsers) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.FailedLogins = 0
		user.LastLoginAt = at
	}
	return nil
}

func (m *mockEndUsers) RecordLoginFailure(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.FailedLogins++
	}
	return nil
}

func (m *mockEndUsers) MarkContactVerified(_ context.Context, id string, channel contact.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		switch channel {
		case contact.ChannelEmail:
			user.EmailVerified = true
		case contact.ChannelMessaging:
			user.PhoneVerified = true
		}
	}
	return nil
}

func (m *mockEndUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

type mockOperators struct {
	mu      sync.Mutex
	members map[string]*OperatorMemberRecord
}

func newMockOperators() *mockOperators {
	return &mockOperators{members: make(map[string]*OperatorMemberRecord)}
}

func (m *mockOperators) add(record OperatorMemberRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[record.ID] = &record
}

func (m *mockOperators) GetByContact(_ context.Context, value string, channel contact.Channel) (*OperatorMemberRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.members {
		if (channel == contact.ChannelEmail && member.Email == value) ||
			(channel == contact.ChannelMessaging && member.Phone == value) {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockOperators) GetByID(_ context.Context, id string) (*OperatorMemberRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (m *mockOperators) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		member.LastLoginAt = at
	}
	return nil
}

func (m *mockOperators) MarkContactVerified(_ context.Context, id string, channel contact.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		switch channel {
		case contact.ChannelEmail:
			member.EmailVerified = true
		case contact.ChannelMessaging:
			member.PhoneVerified = true
		}
	}
	return nil
}

func (m *mockOperators) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member, ok := m.members[id]; ok {
		member.PasswordHash = hash
	}
	return nil
}

// mockSender records every delivery attempt, including ones it then fails.
type mockSender struct {
	mu         sync.Mutex
	deliveries []string
	failWith   error
}

func (s *mockSender) Deliver(_ context.Context, _, text string) error {
	s.mu.Lock()
	s.deliveries = append(s.deliveries, text)
	s.mu.Unlock()
	return s.failWith
}

// lastCode extracts the code from the most recent delivery text.
func (s *mockSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.deliveries) == 0 {
		t.Fatal("no deliveries recorded")
	}
	fields := strings.Fields(s.deliveries[len(s.deliveries)-1])
	return fields[0]
}

func (s *mockSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deliveries)
}

type testEnv struct {
	engine    *Engine
	redis     *miniredis.Miniredis
	endUsers  *mockEndUsers
	operators *mockOperators
	email     *mockSender
	messaging *mockSender
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = fastPasswordConfig
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	env := &testEnv{
		redis:     mr,
		endUsers:  newMockEndUsers(),
		operators: newMockOperators(),
		email:     &mockSender{},
		messaging: &mockSender{},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithEndUserProvider(env.endUsers).
		WithOperatorProvider(env.operators).
		WithEmailSender(env.email).
		WithMessagingSender(env.messaging).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	env.engine = engine
	return env
}

// newAuditedEnv builds an engine with the audit dispatcher enabled and the
// given sink wired.
func newAuditedEnv(t *testing.T, sink AuditSink) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = fastPasswordConfig
	cfg.Audit.BufferSize = 32

	env := &testEnv{
		redis:     mr,
		endUsers:  newMockEndUsers(),
		operators: newMockOperators(),
		email:     &mockSender{},
		messaging: &mockSender{},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithEndUserProvider(env.endUsers).
		WithOperatorProvider(env.operators).
		WithEmailSender(env.email).
		WithMessagingSender(env.messaging).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	env.engine = engine
	return env
}

func hashFor(t *testing.T, plaintext string) string {
	t.Helper()
	hasher, err := password.NewHasher(fastPasswordConfig)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

func (env *testEnv) seedEndUser(t *testing.T, id, email, phone, plaintext string, active bool) {
	t.Helper()
	record := EndUserRecord{
		ID:     id,
		Email:  email,
		Phone:  phone,
		Active: active,
	}
	if plaintext != "" {
		record.PasswordHash = hashFor(t, plaintext)
	}
	env.endUsers.add(record)
}

func (env *testEnv) seedOperator(t *testing.T, id, orgID, email, plaintext string, role OperatorRole, active bool) {
	t.Helper()
	env.operators.add(OperatorMemberRecord{
		ID:           id,
		OrgID:        orgID,
		Email:        email,
		PasswordHash: hashFor(t, plaintext),
		Role:         role,
		Active:       active,
	})
}
