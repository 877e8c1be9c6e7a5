package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails the operations it is told to fail and otherwise
// behaves like a MemoryStore.
type failingStore struct {
	*session.MemoryStore
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: session.NewMemoryStore()}
}

func (s *failingStore) Load(ctx context.Context) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func (s *failingStore) Save(ctx context.Context, data []byte) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, data)
}

func (s *failingStore) Clear(ctx context.Context) error {
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryStore.Clear(ctx)
}

func newManager(t *testing.T, store session.Store, opts ...session.Option) *session.Manager {
	t.Helper()
	return session.NewManager(identity.NewDefaultDirectory(), store, opts...)
}

func persisted(t *testing.T, store session.Store, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), data))
}

func TestNewManager_StartsPending(t *testing.T) {
	m := newManager(t, session.NewMemoryStore())
	assert.Equal(t, session.StatePending, m.State())
	assert.Nil(t, m.Current())
}

func TestLogin_MixedCaseHandle(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	m := newManager(t, store)
	m.Restore(ctx)

	ok, err := m.Login(ctx, "SALES_STAFF_1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, session.StateAuthenticated, m.State())
	cur := m.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "U_S1", cur.ID)
	assert.Equal(t, identity.RoleStaff, cur.RoleLevel)
	assert.Equal(t, identity.DeptSales, cur.Department)

	data, err := store.Load(ctx)
	require.NoError(t, err)
	var saved identity.Identity
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, *cur, saved)
}

func TestLogin_UnknownHandle(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	m := newManager(t, store)
	m.Restore(ctx)

	ok, err := m.Login(ctx, "nonexistent_user")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())
	assert.Zero(t, store.saves, "nothing may be persisted")

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogin_UnknownHandleKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, session.NewMemoryStore())
	m.Restore(ctx)

	ok, err := m.Login(ctx, "ceo")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Login(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, session.StateAuthenticated, m.State())
	assert.Equal(t, "U_CEO", m.Current().ID)
}

func TestLogin_UnknownHandleWhilePending(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, session.NewMemoryStore())

	ok, err := m.Login(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	require.NoError(t, m.Wait(ctx))
}

func TestLogin_SaveFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	store.saveErr = errors.New("disk full")
	m := newManager(t, store)
	m.Restore(ctx)

	ok, err := m.Login(ctx, "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.saveErr)
	assert.False(t, ok)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())
}

func TestLogin_DelayHonoursContext(t *testing.T) {
	m := newManager(t, session.NewMemoryStore(), session.WithLoginDelay(time.Hour))
	m.Restore(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := m.Login(ctx, "admin")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
	assert.Equal(t, session.StateUnauthenticated, m.State())
}

func TestLogin_WithDelay(t *testing.T) {
	m := newManager(t, session.NewMemoryStore(), session.WithLoginDelay(5*time.Millisecond))
	m.Restore(context.Background())

	start := time.Now()
	ok, err := m.Login(context.Background(), "hr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	m := newManager(t, store)
	m.Restore(ctx)

	_, err := m.Login(ctx, "accountant")
	require.NoError(t, err)

	m.Logout(ctx)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())

	m.Logout(ctx)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogout_StoreFailureStillLogsOut(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	m := newManager(t, store)
	m.Restore(ctx)
	_, err := m.Login(ctx, "admin")
	require.NoError(t, err)

	store.clearErr = errors.New("locked")
	m.Logout(ctx)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())
}

func TestLogout_ResolvesPending(t *testing.T) {
	m := newManager(t, session.NewMemoryStore())
	m.Logout(context.Background())
	assert.Equal(t, session.StateUnauthenticated, m.State())
	require.NoError(t, m.Wait(context.Background()))
}

func TestRestore_ValidSlot(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	want := identity.DefaultIdentities()[2]
	persisted(t, store, want)

	m := newManager(t, store)
	m.Restore(ctx)

	assert.Equal(t, session.StateAuthenticated, m.State())
	require.NotNil(t, m.Current())
	assert.Equal(t, want, *m.Current())
}

func TestRestore_CorruptSlots(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"id": "U_S1",`},
		{"not an object", `"admin"`},
		{"null", `null`},
		{"empty", ``},
		{"unknown field", `{"id":"U_S1","handle":"sales_staff_1","displayName":"S1","roleLevel":"STAFF","department":"SALES","tenant":"x"}`},
		{"missing id", `{"handle":"sales_staff_1","displayName":"S1","roleLevel":"STAFF","department":"SALES"}`},
		{"bad role level", `{"id":"U_S1","handle":"sales_staff_1","displayName":"S1","roleLevel":"INTERN","department":"SALES"}`},
		{"bad department", `{"id":"U_S1","handle":"sales_staff_1","displayName":"S1","roleLevel":"STAFF","department":"MARKETING"}`},
		{"old schema", `{"id":"U_S1","username":"sales_staff_1","name":"S1","role":"STAFF"}`},
		{"trailing data", `{"id":"U_S1","handle":"sales_staff_1","displayName":"S1","roleLevel":"STAFF","department":"SALES"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newFailingStore()
			require.NoError(t, store.MemoryStore.Save(ctx, []byte(tt.data)))

			m := newManager(t, store)
			assert.NotPanics(t, func() { m.Restore(ctx) })

			assert.Equal(t, session.StateUnauthenticated, m.State())
			assert.Nil(t, m.Current())
			assert.Equal(t, 1, store.clears, "corrupt slot should be cleared")
		})
	}
}

func TestRestore_EmptySlot(t *testing.T) {
	store := newFailingStore()
	m := newManager(t, store)
	m.Restore(context.Background())

	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Zero(t, store.clears)
}

func TestRestore_StoreError(t *testing.T) {
	store := newFailingStore()
	store.loadErr = errors.New("permission denied")
	m := newManager(t, store)
	m.Restore(context.Background())

	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Zero(t, store.clears, "unreadable slot is left alone")
}

func TestRestore_NoOpAfterLogin(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	persisted(t, store, identity.DefaultIdentities()[0])

	m := newManager(t, store)
	ok, err := m.Login(ctx, "hr")
	require.NoError(t, err)
	require.True(t, ok)

	m.Restore(ctx)
	assert.Equal(t, "U_HR", m.Current().ID)
}

func TestWait(t *testing.T) {
	m := newManager(t, session.NewMemoryStore())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	m.Restore(context.Background())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Restore")
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, session.NewMemoryStore())
	m.Restore(ctx)
	_, err := m.Login(ctx, "admin")
	require.NoError(t, err)

	cur := m.Current()
	cur.RoleLevel = identity.RoleStaff
	assert.Equal(t, identity.RoleExecutive, m.Current().RoleLevel)
}

func TestConcurrentLogins(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	m := newManager(t, store)
	m.Restore(ctx)

	handles := []string{"admin", "ceo", "sales_manager", "sales_staff_1", "hr"}
	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			_, err := m.Login(ctx, h)
			assert.NoError(t, err)
		}(h)
	}

	// Readers must only ever see whole identities.
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if cur := m.Current(); cur != nil {
				assert.NoError(t, cur.Validate())
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	cur := m.Current()
	require.NotNil(t, cur)

	// The persisted slot matches whichever login ran last.
	data, err := store.Load(ctx)
	require.NoError(t, err)
	var saved identity.Identity
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, cur.ID, saved.ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", session.StatePending.String())
	assert.Equal(t, "authenticated", session.StateAuthenticated.String())
	assert.Equal(t, "unauthenticated", session.StateUnauthenticated.String())
	assert.Equal(t, "state(9)", session.State(9).String())
}

func newDirectory() *identity.Directory {
	return identity.NewDefaultDirectory()
}
