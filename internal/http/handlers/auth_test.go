package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/domain/user"
	"github.com/omnibothq/omnibot/internal/http/handlers"
	"github.com/omnibothq/omnibot/internal/security"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}

	return out
}

// Fake user store implementing the handlers.UserReader and handlers.UserWriter interfaces

type fakeUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	createFn     func(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash, name)
	}

	return user.User{}, nil
}

type fakeIssuer struct {
	issueFn func(userID, email string) (string, error)
}

func (f *fakeIssuer) IssueToken(userID, email string) (string, error) {
	if f.issueFn != nil {
		return f.issueFn(userID, email)
	}

	return "test-token", nil
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"name": "A", "email": "a@x.com", "password": "p12345678"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, email, passwordHash, name string) (user.User, error) {
					return user.User{ID: "generated-id", Email: email, Name: name, PasswordHash: passwordHash}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "duplicate_email",
			body: `{"name": "B", "email": "a@x.com", "password": "different"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, email, passwordHash, name string) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_email",
			body:           `{"name": "A", "password": "p12345678"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "malformed_json",
			body:           `{"name": `,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{})
			r := setupRouter(http.MethodPost, "/api/auth/register", h.Register)

			w := doJSON(t, r, http.MethodPost, "/api/auth/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d (body %s)", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				body := decodeBody(t, w)

				if body["id"] != "generated-id" || body["email"] != "a@x.com" {
					t.Fatalf("unexpected body %v", body)
				}

				if _, leaked := body["hashed_password"]; leaked {
					t.Fatal("password hash must never appear in responses")
				}
			}
		})
	}
}

func TestRegisterHashesThePassword(t *testing.T) {
	var gotHash string

	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, email, passwordHash, name string) (user.User, error) {
			gotHash = passwordHash
			return user.User{ID: "1", Email: email, Name: name}, nil
		},
	}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{})
	r := setupRouter(http.MethodPost, "/api/auth/register", h.Register)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"name": "A", "email": "a@x.com", "password": "plaintext-pass"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
	}

	if gotHash == "plaintext-pass" || gotHash == "" {
		t.Fatalf("expected a bcrypt hash, got %q", gotHash)
	}

	if err := security.CheckPassword(gotHash, "plaintext-pass"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("correct-password")
	if err != nil {
		t.Fatal(err)
	}

	known := user.User{ID: "7", Email: "demo@example.com", Name: "Demo User", PasswordHash: hash}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"email": "demo@example.com", "password": "correct-password"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "wrong_password",
			body:           `{"email": "demo@example.com", "password": "wrong"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "nobody@example.com", "password": "correct-password"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{})
			r := setupRouter(http.MethodPost, "/api/auth/login", h.Login)

			w := doJSON(t, r, http.MethodPost, "/api/auth/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d (body %s)", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				body := decodeBody(t, w)

				if body["access_token"] != "test-token" || body["token_type"] != "bearer" || body["success"] != true {
					t.Fatalf("unexpected body %v", body)
				}
			}
		})
	}
}

// unknown email and wrong password must be indistinguishable from outside

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hash, err := security.HashPassword("correct-password")
	if err != nil {
		t.Fatal(err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "demo@example.com" {
				return user.User{ID: "7", Email: email, PasswordHash: hash}, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{})
	r := setupRouter(http.MethodPost, "/api/auth/login", h.Login)

	unknownEmail := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email": "nobody@example.com", "password": "correct-password"}`)
	wrongPassword := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email": "demo@example.com", "password": "wrong"}`)

	if unknownEmail.Code != wrongPassword.Code {
		t.Fatalf("status codes differ: %d vs %d", unknownEmail.Code, wrongPassword.Code)
	}

	if unknownEmail.Body.String() != wrongPassword.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", unknownEmail.Body.String(), wrongPassword.Body.String())
	}
}

func TestTokenHandlerAcceptsFormBody(t *testing.T) {
	hash, err := security.HashPassword("correct-password")
	if err != nil {
		t.Fatal(err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "demo@example.com" {
				return user.User{ID: "7", Email: email, PasswordHash: hash}, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	h := handlers.NewAuthHandler(repo, repo, &fakeIssuer{})
	r := setupRouter(http.MethodPost, "/api/auth/token", h.Token)

	form := url.Values{}
	form.Set("username", "demo@example.com")
	form.Set("password", "correct-password")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	if body["access_token"] != "test-token" || body["token_type"] != "bearer" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestTokenHandlerRejectsMissingFields(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUsersRepo{}, &fakeUsersRepo{}, &fakeIssuer{})
	r := setupRouter(http.MethodPost, "/api/auth/token", h.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader("username=only"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}
