package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/exam"
	"github.com/mind-engage/examhall/internal/logger"
)

const invalidCredentials = "Invalid credentials"

// Service is the identity capability: registration, credential checks,
// token issue and resolution.
type Service struct {
	users            exam.UserStore
	tokens           *TokenService
	bcryptCost       int
	allowAdminSignup bool
	log              *logger.Logger
	now              func() time.Time
}

type Options struct {
	BcryptCost       int
	AllowAdminSignup bool
	Logger           *logger.Logger
}

func NewService(users exam.UserStore, tokens *TokenService, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users:            users,
		tokens:           tokens,
		bcryptCost:       opts.BcryptCost,
		allowAdminSignup: opts.AllowAdminSignup,
		log:              log,
		now:              time.Now,
	}
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Session is what register and login hand back to the client.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        exam.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in Registration) (Session, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return Session{}, apperr.Validation("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, apperr.Validation("email is not a valid address")
	}
	role, err := exam.ParseRole(in.Role)
	if err != nil {
		return Session{}, apperr.Validation("role must be admin or student")
	}
	if role == exam.RoleAdmin && !s.allowAdminSignup {
		return Session{}, apperr.Forbidden("Admin registration is disabled")
	}

	u, err := s.createUser(ctx, username, email, in.Password, role)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username, "role", string(u.Role))
	return s.session(u)
}

// VerifyCredentials returns the user for a username/password pair. Unknown
// users and wrong passwords fail the same way.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (exam.User, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return exam.User{}, apperr.Auth(invalidCredentials)
	}
	if err != nil {
		return exam.User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return exam.User{}, apperr.Auth(invalidCredentials)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) IssueToken(u exam.User) (string, error) {
	return s.tokens.IssueJWT(u.ID, string(u.Role))
}

// ResolveToken re-reads the token's user so deleted users lose access
// immediately.
func (s *Service) ResolveToken(ctx context.Context, token string) (exam.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return exam.User{}, apperr.Auth("Invalid token")
	}
	u, err := s.users.UserByID(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return exam.User{}, apperr.Auth("User not found")
	}
	if err != nil {
		return exam.User{}, err
	}
	return u, nil
}

type AdminAccount struct {
	Username string
	Email    string
	Password string
}

type InitAdminResult struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// InitAdmin creates acct as the first admin. It does nothing once any admin
// exists.
func (s *Service) InitAdmin(ctx context.Context, acct AdminAccount) (InitAdminResult, error) {
	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		return InitAdminResult{}, err
	}
	if exists {
		return InitAdminResult{Message: "Admin already exists"}, nil
	}
	u, err := s.createUser(ctx, acct.Username, acct.Email, acct.Password, exam.RoleAdmin)
	if err != nil {
		return InitAdminResult{}, err
	}
	s.log.Info("admin bootstrapped", "user_id", u.ID, "username", u.Username)
	return InitAdminResult{Message: "Admin user created", Username: acct.Username, Password: acct.Password}, nil
}

func (s *Service) createUser(ctx context.Context, username, email, password string, role exam.Role) (exam.User, error) {
	hash, err := HashPassword(password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return exam.User{}, apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return exam.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := exam.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		return exam.User{}, err
	}
	return u, nil
}

func (s *Service) session(u exam.User) (Session, error) {
	tok, err := s.IssueToken(u)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{AccessToken: tok, TokenType: "bearer", User: u}, nil
}
