// Package auth registers users, checks passwords and issues session tokens.
//
// Passwords are stored as bcrypt hashes. A successful login creates a
// [session.Session] whose ID is the bearer token clients send on later
// requests; [Service.Authenticate] resolves it back to the user.
package auth

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/session"
)

// RegisterRequest is the payload of Register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload of Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Result is returned by Register and Login.
type Result struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *project.User `json:"user"`
}

// Service implements the account operations.
type Service struct {
	users    project.UserRepository
	sessions session.Store
	ttl      time.Duration
	cost     int
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the session lifetime. Default session.DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns an auth service over the given stores.
func NewService(users project.UserRepository, sessions session.Store, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		ttl:      session.DefaultTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Register creates an account and logs it in. A taken email fails with
// errors.ErrCodeConflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "all fields are required")
	}
	if err := errors.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := errors.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := errors.ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot hash password")
	}

	now := s.now()
	u := &project.User{
		ID:           project.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("registered user", "user", u.ID, "username", u.Username)
	return s.startSession(ctx, u)
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords fail alike with errors.ErrCodeUnauthorized.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	invalid := errors.New(errors.ErrCodeUnauthorized, "invalid email or password")

	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUserNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			s.logger.Debug("password mismatch", "user", u.ID)
			return nil, invalid
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compare password")
	}
	return s.startSession(ctx, u)
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete session")
	}
	return nil
}

// Authenticate resolves a bearer token to its user. Missing, unknown and
// expired tokens fail with errors.ErrCodeUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*project.User, *session.Session, error) {
	if token == "" {
		return nil, nil, errors.New(errors.ErrCodeUnauthorized, "authentication required")
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		return nil, nil, errors.New(errors.ErrCodeUnauthorized, "invalid or expired token")
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUserNotFound) {
			return nil, nil, errors.New(errors.ErrCodeUnauthorized, "user not found")
		}
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *Service) startSession(ctx context.Context, u *project.User) (*Result, error) {
	sess, err := session.New(u.ID, u.Username, s.ttl)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create session")
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	return &Result{Token: sess.ID, ExpiresAt: sess.ExpiresAt, User: u}, nil
}
