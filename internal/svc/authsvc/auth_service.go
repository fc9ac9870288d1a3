package authsvc

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// DefaultAdminPassword is used to seed the admin account into an empty credential store
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD" default:"password"`
}

// AuthService is the credential store: it holds every registered user in
// memory and writes the whole store back on each registration.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Log      logging.Logger

	users []domain.User
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration
// and loads the credential store.
// Returns an error if the repository cannot be created or the store cannot be read.
func NewAuthService(ctx context.Context, repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	userRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	svc := &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}

	if err := svc.Reload(ctx); err != nil {
		_ = userRepo.Close()

		return nil, err
	}

	return svc, nil
}

// Reload replaces the in-memory store with the repository content.
func (s *AuthService) Reload(ctx context.Context) error {
	users, err := s.UserRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	s.users = users

	return nil
}

// EnsureDefaultAdmin seeds the admin account if the credential store is empty.
// Reports whether the account was created.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) (created bool, err error) {
	err = s.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		if len(users) > 0 {
			return nil, nil
		}

		created = true

		return []domain.User{{Username: domain.AdminUsername, Password: s.Config.DefaultAdminPassword}}, nil
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	if created {
		s.Log.InfoContext(ctx, "default admin account created")
	}

	return created, nil
}

// Register adds a new user and persists the credential store.
// Returns domain.ErrUsernameTaken if the name exists in any letter case,
// domain.ErrPasswordMismatch if confirm differs from password, and
// domain.ErrInvalidField if a value cannot be stored.
// The store is only written on success.
func (s *AuthService) Register(ctx context.Context, username, password, confirm string) (err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	username = strings.TrimSpace(username)

	if username == "" {
		return fmt.Errorf("%w: username must not be empty", domain.ErrInvalidField)
	}

	if err := domain.ValidateField("username", username); err != nil {
		return err
	}

	if err := domain.ValidateField("password", password); err != nil {
		return err
	}

	return s.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		if _, ok := resolve(users, username); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
		}

		if password != confirm {
			return nil, domain.ErrPasswordMismatch
		}

		return append(slices.Clone(users), domain.User{Username: username, Password: password}), nil
	})
}

// Authenticate checks a username and password against the credential store
// and opens a session. The username must match exactly.
// Returns domain.ErrUserNotFound or domain.ErrWrongPassword on failure.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (_ domain.Session, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	idx := slices.IndexFunc(s.users, func(u domain.User) bool { return u.Username == username })
	if idx < 0 {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}

	if s.users[idx].Password != password {
		return domain.Session{}, domain.ErrWrongPassword
	}

	return domain.NewSession(username), nil
}

// Exists reports whether a user with the given name exists, ignoring letter case.
func (s *AuthService) Exists(username string) bool {
	_, ok := resolve(s.users, username)

	return ok
}

// Resolve returns the stored spelling of username, ignoring letter case.
// The boolean is true iff the user exists.
func (s *AuthService) Resolve(username string) (string, bool) {
	return resolve(s.users, username)
}

// Users returns all usernames in registration order.
func (s *AuthService) Users() []string {
	names := make([]string, 0, len(s.users))

	for _, u := range s.users {
		names = append(names, u.Username)
	}

	return names
}

// Close releases resources held by the service.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}

// mutate runs one locked read-modify-write cycle. fn receives the freshly
// loaded users and returns the new store content, or nil to leave it as is.
func (s *AuthService) mutate(ctx context.Context, fn func([]domain.User) ([]domain.User, error)) error {
	release, err := s.UserRepo.Lock(ctx)
	if err != nil {
		return fmt.Errorf("lock user repo: %w", err)
	}
	defer release()

	if err := s.Reload(ctx); err != nil {
		return err
	}

	users, err := fn(s.users)
	if err != nil {
		return err
	}

	if users == nil {
		return nil
	}

	if err := s.UserRepo.Save(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	s.users = users

	return nil
}

func resolve(users []domain.User, username string) (string, bool) {
	username = strings.TrimSpace(username)

	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u.Username, true
		}
	}

	return "", false
}
