package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peauntmore/Meeting-Translator/internal/logging"
	"github.com/Peauntmore/Meeting-Translator/internal/model"
	"github.com/Peauntmore/Meeting-Translator/internal/repository"
	"github.com/Peauntmore/Meeting-Translator/internal/services"
)

type memoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
}

func (m *memoryUserRepo) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	clone := *u
	m.byEmail[u.Email] = &clone
	return nil
}

func (m *memoryUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryUserRepo) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.VerificationToken != nil && *u.VerificationToken == token && u.VerificationTokenExpires.After(now) {
			u.IsVerified = true
			u.VerificationToken = nil
			u.VerificationTokenExpires = nil
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

type noopSender struct{}

func (noopSender) SendVerificationEmail(context.Context, string, string) error { return nil }

func newTestServer(t *testing.T) (*echo.Echo, *services.AccountService) {
	t.Helper()
	repo := &memoryUserRepo{byEmail: map[string]*model.User{}}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := services.NewAccountService(repo, services.NewLocalValidator(), noopSender{}, "http://localhost:8080", logger)

	e := echo.New()
	registerAuthRoutes(e.Group("/api"), svc, noopSender{}, "")
	return e, svc
}

func doJSON(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	rec, body := doJSON(e, http.MethodPost, "/api/register",
		`{"username":"alice","email":"a@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "check your email")
}

func TestRegisterEndpointValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec, body := doJSON(e, http.MethodPost, "/api/register",
		`{"username":"a","email":"nope","password":"123"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	require.IsType(t, []any{}, body["errors"])
	assert.Len(t, body["errors"], 3)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	e, _ := newTestServer(t)

	rec, _ := doJSON(e, http.MethodPost, "/api/register",
		`{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(e, http.MethodPost, "/api/register",
		`{"username":"bob","email":"a@x.com","password":"other-password"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "already registered")
}

func TestVerifyEmailEndpoint(t *testing.T) {
	e, svc := newTestServer(t)

	user, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	token := *user.VerificationToken

	rec, body := doJSON(e, http.MethodGet, "/api/verify-email/wrong-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = doJSON(e, http.MethodGet, "/api/verify-email/"+token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	// One-time use: the same link must not verify twice.
	rec, _ = doJSON(e, http.MethodGet, "/api/verify-email/"+token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	e, svc := newTestServer(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	require.NoError(t, err)

	rec, _ := doJSON(e, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "login before verification")

	_, err = svc.VerifyEmail(ctx, *user.VerificationToken)
	require.NoError(t, err)

	rec, _ = doJSON(e, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(e, http.MethodPost, "/api/login", `{"email":"not-an-email","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed email is a 400, not a 401")

	rec, body := doJSON(e, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	loggedIn, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), loggedIn["id"])
	assert.Equal(t, "alice", loggedIn["username"])
	assert.Equal(t, "a@x.com", loggedIn["email"])
	assert.NotContains(t, rec.Body.String(), user.PasswordHash)
}

func TestTestEmailEndpointUnconfigured(t *testing.T) {
	e, _ := newTestServer(t)

	rec, body := doJSON(e, http.MethodGet, "/api/test-email", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}
