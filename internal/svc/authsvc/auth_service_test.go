package authsvc_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/user"
	"github.com/mkrupp/taskmgr/internal/svc/authsvc"
)

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users   []domain.User
	saves   int
	saveErr error
	loadErr error
	m       sync.Mutex
}

func (m *mockUserRepository) Load(_ context.Context) ([]domain.User, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	return slices.Clone(m.users), nil
}

func (m *mockUserRepository) Save(_ context.Context, users []domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saves++
	m.users = slices.Clone(users)

	return nil
}

func (m *mockUserRepository) Lock(_ context.Context) (func(), error) {
	m.m.Lock()

	return m.m.Unlock, nil
}

func (m *mockUserRepository) Close() error {
	return nil
}

var ErrRepoError = errors.New("repository error")

func setupTestService(t *testing.T, users ...domain.User) (*authsvc.AuthService, *mockUserRepository) {
	t.Helper()

	mockRepo := &mockUserRepository{users: users}

	svc, err := authsvc.NewAuthService(
		context.Background(),
		func(context.Context) (user.Repository, error) { return mockRepo, nil },
		authsvc.AuthConfig{DefaultAdminPassword: "password"},
	)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}

	svc.Log = logging.GetLogger("test.authsvc")

	return svc, mockRepo
}

func TestNewAuthService_LoadError(t *testing.T) {
	t.Parallel()

	_, err := authsvc.NewAuthService(
		context.Background(),
		func(context.Context) (user.Repository, error) { return &mockUserRepository{loadErr: ErrRepoError}, nil },
		authsvc.AuthConfig{},
	)
	if !errors.Is(err, ErrRepoError) {
		t.Fatalf("NewAuthService() error = %v, want %v", err, ErrRepoError)
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		username  string
		password  string
		confirm   string
		saveErr   error
		wantErr   error
		wantSaved bool
	}{
		{
			name:      "successful registration",
			username:  "newuser",
			password:  "password123",
			confirm:   "password123",
			wantSaved: true,
		},
		{
			name:     "duplicate username",
			username: "bob",
			password: "password123",
			confirm:  "password123",
			wantErr:  domain.ErrUsernameTaken,
		},
		{
			name:     "duplicate username in other case",
			username: "BOB",
			password: "password123",
			confirm:  "password123",
			wantErr:  domain.ErrUsernameTaken,
		},
		{
			name:     "password mismatch",
			username: "newuser",
			password: "password123",
			confirm:  "password124",
			wantErr:  domain.ErrPasswordMismatch,
		},
		{
			name:     "empty username",
			username: "  ",
			password: "x",
			confirm:  "x",
			wantErr:  domain.ErrInvalidField,
		},
		{
			name:     "delimiter in password",
			username: "newuser",
			password: "pass;word",
			confirm:  "pass;word",
			wantErr:  domain.ErrInvalidField,
		},
		{
			name:     "repository error",
			username: "erroruser",
			password: "password123",
			confirm:  "password123",
			saveErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, mockRepo := setupTestService(t, domain.User{Username: "bob", Password: "builder"})
			mockRepo.saveErr = tt.saveErr

			err := svc.Register(context.Background(), tt.username, tt.password, tt.confirm)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}

			if saved := mockRepo.saves > 0; saved != tt.wantSaved {
				t.Errorf("store saved = %v, want %v", saved, tt.wantSaved)
			}

			wantUsers := 1
			if tt.wantSaved {
				wantUsers = 2
			}

			if got := len(svc.Users()); got != wantUsers {
				t.Errorf("len(Users()) = %d, want %d", got, wantUsers)
			}
		})
	}
}

func TestAuthService_RegisterThenAuthenticate(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t, domain.User{Username: "admin", Password: "password"})
	ctx := context.Background()

	for _, name := range []string{"ann", "Ben", "carol"} {
		if err := svc.Register(ctx, name, name+"-pw", name+"-pw"); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}

		session, err := svc.Authenticate(ctx, name, name+"-pw")
		if err != nil {
			t.Fatalf("Authenticate(%q) error = %v", name, err)
		}

		if session.Username != name || session.IsAdmin {
			t.Errorf("Authenticate(%q) = %+v", name, session)
		}
	}

	want := []string{"admin", "ann", "Ben", "carol"}
	if got := svc.Users(); !slices.Equal(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t,
		domain.User{Username: "admin", Password: "password"},
		domain.User{Username: "bob", Password: "builder"},
	)

	tests := []struct {
		name      string
		username  string
		password  string
		wantErr   error
		wantAdmin bool
	}{
		{
			name:      "admin login",
			username:  "admin",
			password:  "password",
			wantAdmin: true,
		},
		{
			name:     "regular login",
			username: "bob",
			password: "builder",
		},
		{
			name:     "unknown user",
			username: "eve",
			password: "builder",
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name:     "username match is exact",
			username: "Admin",
			password: "password",
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name:     "wrong password",
			username: "bob",
			password: "Builder",
			wantErr:  domain.ErrWrongPassword,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				return
			}

			if session.IsAdmin != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", session.IsAdmin, tt.wantAdmin)
			}

			if session.ID == "" {
				t.Error("session ID is empty")
			}
		})
	}
}

func TestAuthService_Resolve(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t, domain.User{Username: "Bob", Password: "builder"})

	if name, ok := svc.Resolve("bob"); !ok || name != "Bob" {
		t.Errorf("Resolve(bob) = %q, %v, want Bob, true", name, ok)
	}

	if !svc.Exists("BOB") {
		t.Error("Exists(BOB) = false")
	}

	if svc.Exists("alice") {
		t.Error("Exists(alice) = true")
	}
}

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureDefaultAdmin(ctx)
	if err != nil || !created {
		t.Fatalf("EnsureDefaultAdmin() = %v, %v, want true, nil", created, err)
	}

	if _, err := svc.Authenticate(ctx, "admin", "password"); err != nil {
		t.Errorf("Authenticate(admin) error = %v", err)
	}

	created, err = svc.EnsureDefaultAdmin(ctx)
	if err != nil || created {
		t.Fatalf("second EnsureDefaultAdmin() = %v, %v, want false, nil", created, err)
	}

	if mockRepo.saves != 1 {
		t.Errorf("saves = %d, want 1", mockRepo.saves)
	}
}
