package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"student-records/internal/auth"
	"student-records/internal/domain"
	"student-records/internal/repository"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "Bearer"

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string
	TokenType   string
}

// TokenIssuer signs and validates access tokens.
type TokenIssuer interface {
	Generate(username string) (string, error)
	Parse(token string) (*auth.Claims, error)
	Validate(token, username string) (*auth.Claims, error)
}

// AuthService describes admin registration, login and token checks.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*TokenResponse, error)
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*domain.Admin, error)
}

type authService struct {
	admins repository.AdminRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	log    logrus.FieldLogger

	// dummyHash is verified against when the username is unknown so both
	// login failures cost one hash comparison.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(admins repository.AdminRepository, hasher auth.PasswordHasher, tokens TokenIssuer, log logrus.FieldLogger) AuthService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &authService{
		admins: admins,
		hasher: hasher,
		tokens: tokens,
		log:    log.WithField("component", "auth"),
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*TokenResponse, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	taken, err := s.admins.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, adminTaken(username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, NewValidationError(map[string]string{"password": "Password must not exceed 72 bytes"})
		}
		return nil, err
	}

	admin := &domain.Admin{Username: username, PasswordHash: hash}
	if _, err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, adminTaken(username)
		}
		return nil, err
	}

	s.log.WithField("username", username).Info("admin registered")
	return s.issue(admin.Username)
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(s.fallbackHash(), password)
			return nil, NewUnauthorizedError(err)
		}
		return nil, err
	}

	if !s.hasher.Verify(admin.PasswordHash, password) {
		return nil, NewUnauthorizedError(nil)
	}

	return s.issue(admin.Username)
}

// Authenticate resolves the admin a token was issued to. The token must name
// an existing admin and validate against that admin's username.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Admin, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: err}
	}
	if claims.Role != auth.RoleAdmin {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: auth.ErrTokenInvalid}
	}

	admin, err := s.admins.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &Error{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: err}
		}
		return nil, err
	}

	if _, err := s.tokens.Validate(token, admin.Username); err != nil {
		return nil, &Error{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: err}
	}
	return &domain.Admin{ID: admin.ID, Username: admin.Username, CreatedAt: admin.CreatedAt}, nil
}

func (s *authService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-admin-placeholder")
		if err != nil {
			s.log.WithError(err).Warn("hash placeholder password")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *authService) issue(username string) (*TokenResponse, error) {
	token, err := s.tokens.Generate(username)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func validateCredentials(username, password string) error {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "Username is required"
	}
	if strings.TrimSpace(password) == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func adminTaken(username string) error {
	return NewConflictError("Admin with username '%s' already exists", username)
}
