package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/ids"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/sanitize"
	"github.com/internhub/server/internal/validation"
	"github.com/rs/zerolog"
)

// TokenIssuer signs bearer tokens for an account.
type TokenIssuer interface {
	Generate(subject string, role auth.Role) (string, error)
}

// RegisterParams is the self-registration input. Role defaults to student.
type RegisterParams struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	Password       string   `json:"password" validate:"required,min=6,max=72"`
	Role           string   `json:"role" validate:"omitempty,oneof=student employer admin"`
	CompanyName    string   `json:"companyName" validate:"max=200"`
	CompanyWebsite string   `json:"companyWebsite" validate:"max=2048"`
	Skills         []string `json:"skills" validate:"max=50,dive,max=100"`
	Resume         string   `json:"resume" validate:"max=2048"`
}

// Service registers accounts, verifies credentials and issues tokens.
type Service struct {
	repo      Repository
	tokens    TokenIssuer
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		validator: validation.New(),
		logger:    logger.With().Str("component", "accounts").Logger(),
		now:       time.Now,
	}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a student or employer account and signs the caller in.
//
// Employer-only fields are dropped for students and vice versa. Admin accounts
// can only be created through EnsureAdmin.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	params.Name = sanitize.Text(params.Name)
	params.Email = NormalizeEmail(params.Email)
	params.Role = strings.ToLower(strings.TrimSpace(params.Role))
	if params.Role == "" {
		params.Role = string(auth.RoleStudent)
	}

	if err := validation.Struct(s.validator, params, "Please fill all fields"); err != nil {
		return nil, err
	}

	role, _ := auth.ParseRole(params.Role)
	if role == auth.RoleAdmin {
		return nil, ErrAdminRegistration
	}

	account := Account{
		Name:  params.Name,
		Email: params.Email,
		Role:  role,
	}
	switch role {
	case auth.RoleEmployer:
		website := strings.TrimSpace(params.CompanyWebsite)
		if err := validation.ValidateURL(website, "companyWebsite"); err != nil {
			return nil, err
		}
		account.Employer = &EmployerProfile{
			CompanyName:    sanitize.Text(params.CompanyName),
			CompanyWebsite: website,
		}
	case auth.RoleStudent:
		account.Student = &StudentProfile{
			Skills: sanitize.TextSlice(params.Skills),
			Resume: strings.TrimSpace(params.Resume),
		}
	}

	if _, err := s.repo.GetByEmail(ctx, account.Email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	created, err := s.create(ctx, account, params.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(created.ID, created.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.AccountsRegistered.WithLabelValues(string(created.Role)).Inc()
	s.logger.Info().
		Str("account_id", created.ID).
		Str("role", string(created.Role)).
		Msg("account registered")

	return &Session{Token: token, Account: created}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same ErrInvalidCredentials after comparable bcrypt work.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		auth.BurnPasswordCheck(password)
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.BurnPasswordCheck(password)
			metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := auth.CheckPassword(account.PasswordHash, password); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		s.logger.Debug().Str("account_id", account.ID).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &Session{Token: token, Account: account}, nil
}

// Me returns the account behind an authenticated identity.
func (s *Service) Me(ctx context.Context, accountID string) (*Account, error) {
	return s.Get(ctx, accountID)
}

func (s *Service) Get(ctx context.Context, accountID string) (*Account, error) {
	if !ids.IsULID(accountID) {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, ids.Normalize(accountID))
}

// IssueToken mints a token for an existing account, using its stored role.
func (s *Service) IssueToken(ctx context.Context, accountID string) (string, *Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, account, nil
}

// EnsureAdmin creates the bootstrap admin account when no account with that
// email exists. It reports whether an account was created. An existing
// account with the email is left untouched whatever its role.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*Account, bool, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, validation.Fail("email", "admin email and password are required")
	}
	if len(password) < 6 {
		return nil, false, validation.Fail("password", "must be at least 6 characters")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != auth.RoleAdmin {
			s.logger.Warn().Str("email", email).Str("role", string(existing.Role)).
				Msg("bootstrap admin email belongs to a non-admin account")
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}

	name = sanitize.Text(name)
	if name == "" {
		name = "Administrator"
	}
	created, err := s.create(ctx, Account{Name: name, Email: email, Role: auth.RoleAdmin}, password)
	if errors.Is(err, ErrDuplicateAccount) {
		existing, getErr := s.repo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, false, fmt.Errorf("lookup admin: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	metrics.AccountsRegistered.WithLabelValues(string(auth.RoleAdmin)).Inc()
	s.logger.Info().Str("account_id", created.ID).Msg("bootstrap admin created")
	return created, true, nil
}

func (s *Service) create(ctx context.Context, account Account, password string) (*Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	account.ID = id
	account.PasswordHash = hash
	account.CreatedAt = s.now().UTC()

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}
