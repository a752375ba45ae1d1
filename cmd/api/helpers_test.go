package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"meethub/internal/auth"
	"meethub/internal/events"
	"meethub/internal/meetingcode"
	"meethub/internal/ratelimiter"
	"meethub/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockMeetingsStore mirrors the persistence semantics of MeetingsStore
// without a database: the cancel guard, unguarded update, and the
// return-before-delete contract all behave the same way.
type mockMeetingsStore struct {
	mu       sync.Mutex
	seq      int64
	meetings map[int64]store.Meeting
}

func newMockMeetings() *mockMeetingsStore {
	return &mockMeetingsStore{meetings: make(map[int64]store.Meeting)}
}

func (m *mockMeetingsStore) Create(_ context.Context, meeting *store.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	meeting.ID = m.seq
	meeting.CreatedAt = time.Now()
	meeting.UpdatedAt = meeting.CreatedAt
	m.meetings[meeting.ID] = *meeting
	return nil
}

func (m *mockMeetingsStore) GetByID(_ context.Context, id int64) (*store.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &meeting, nil
}

func (m *mockMeetingsStore) Cancel(_ context.Context, id int64) (*store.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if meeting.Status != store.StatusScheduled {
		return nil, store.ErrInvalidTransition
	}
	meeting.Status = store.StatusCancelled
	meeting.UpdatedAt = time.Now()
	m.meetings[id] = meeting
	return &meeting, nil
}

func (m *mockMeetingsStore) Update(_ context.Context, id int64, upd store.MeetingUpdate) (*store.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Date != nil {
		meeting.Date = *upd.Date
	}
	if upd.Time != nil {
		meeting.Time = *upd.Time
	}
	if upd.Agenda != nil {
		meeting.Agenda = *upd.Agenda
	}
	if upd.Location != nil {
		meeting.Location = upd.Location
	}
	if upd.Priority != nil {
		meeting.Priority = *upd.Priority
	}
	if upd.Status != nil {
		meeting.Status = *upd.Status
	}
	if upd.Deadline != nil {
		meeting.Deadline = upd.Deadline
	}
	meeting.UpdatedAt = time.Now()
	m.meetings[id] = meeting
	return &meeting, nil
}

func (m *mockMeetingsStore) Delete(_ context.Context, id int64) (*store.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.meetings, id)
	return &meeting, nil
}

func (m *mockMeetingsStore) List(_ context.Context, filter store.MeetingFilter) ([]store.Meeting, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []store.Meeting
	for _, meeting := range m.meetings {
		if filter.Status != nil && meeting.Status != *filter.Status {
			continue
		}
		all = append(all, meeting)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

type mockUsersStore struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]store.User
}

func newMockUsers() *mockUsersStore {
	return &mockUsersStore{users: make(map[int64]store.User)}
}

func (m *mockUsersStore) Create(_ context.Context, user *store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return store.ErrDuplicateUsername
		}
	}
	m.seq++
	user.ID = m.seq
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *mockUsersStore) GetByID(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (m *mockUsersStore) GetByUsername(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUsersStore) ListByRole(_ context.Context, role store.Role) ([]store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []store.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *mockUsersStore) ExistsWithRole(_ context.Context, role store.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUsersStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type recordedEvent struct {
	event   string
	payload any
}

// broadcastRecorder stands in for the fanout hub and captures every publish.
type broadcastRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *broadcastRecorder) Publish(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event: event, payload: payload})
}

func (r *broadcastRecorder) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

type noopMailer struct{}

func (noopMailer) Send(templateFile, username, email string, data any) (int, error) {
	return 200, nil
}

type testApp struct {
	app        *application
	handler    http.Handler
	meetings   *mockMeetingsStore
	users      *mockUsersStore
	broadcasts *broadcastRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := zap.NewNop().Sugar()

	codes, err := meetingcode.NewGenerator("test-salt")
	require.NoError(t, err)

	hub := events.NewHub(logger)
	go hub.Run()

	meetings := newMockMeetings()
	users := newMockUsers()
	recorder := &broadcastRecorder{}

	app := &application{
		config: config{
			env: "test",
			auth: authConfig{
				basic: basicConfig{user: "admin", pass: "admin"},
				token: tokenConfig{
					secret:          "test-secret",
					refreshSecret:   "test-refresh-secret",
					accessTokenExp:  time.Hour,
					refreshTokenExp: time.Hour,
					iss:             "MeetHub",
				},
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger: logger,
		store: store.Storage{
			Meetings: meetings,
			Users:    users,
		},
		authenticator: auth.NewJWTAuthenticator(
			"test-secret", "test-refresh-secret", "MeetHub", "MeetHub", time.Hour, time.Hour,
		),
		broadcaster: recorder,
		hub:         hub,
		mailer:      noopMailer{},
		rateLimiter: ratelimiter.NewFixedWindowLimiter(1000, time.Second),
		codes:       codes,
	}

	return &testApp{
		app:        app,
		handler:    app.mount(),
		meetings:   meetings,
		users:      users,
		broadcasts: recorder,
	}
}

// seedUser registers a user directly in the store and returns a valid access
// token for it.
func (ta *testApp) seedUser(t *testing.T, username string, role store.Role) (*store.User, string) {
	t.Helper()

	user := &store.User{Username: username, Role: role}
	require.NoError(t, user.Password.Set("testpass"))
	require.NoError(t, ta.users.Create(context.Background(), user))

	token, _, err := ta.app.authenticator.GenerateTokens(user.ID, string(role))
	require.NoError(t, err)
	return user, token
}

// seedMeeting plants a meeting record behind the API's back.
func (ta *testApp) seedMeeting(t *testing.T, seller string, date time.Time, status store.MeetingStatus) *store.Meeting {
	t.Helper()

	meeting := &store.Meeting{
		Seller:   seller,
		Date:     date,
		Time:     "10:00",
		Status:   store.StatusScheduled,
		Agenda:   "Agenda",
		Priority: store.PriorityMedium,
	}
	require.NoError(t, ta.meetings.Create(context.Background(), meeting))

	if status != store.StatusScheduled {
		updated, err := ta.meetings.Update(context.Background(), meeting.ID, store.MeetingUpdate{Status: &status})
		require.NoError(t, err)
		return updated
	}
	return meeting
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
