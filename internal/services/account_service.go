package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Peauntmore/Meeting-Translator/internal/logging"
	"github.com/Peauntmore/Meeting-Translator/internal/model"
	"github.com/Peauntmore/Meeting-Translator/internal/repository"
)

const (
	// bcrypt.DefaultCost is 10, but the work factor is part of the
	// account contract, so pin it rather than inherit library changes.
	BcryptCost = 10

	VerificationTokenTTL = 24 * time.Hour

	verificationTokenBytes = 32
)

// UserRepository is the persistence collaborator. Implementations must
// return repository.ErrNotFound / repository.ErrDuplicateEmail for the
// corresponding conditions.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error)
}

// AccountSummary is what Login hands back: enough to greet the user,
// never any password material.
type AccountSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// AccountService owns the account lifecycle: registration, email
// verification and login. All collaborators are injected so tests can
// swap in doubles.
type AccountService struct {
	Users     UserRepository
	Validator EmailValidator
	Mailer    EmailSender
	SiteURL   string
	Log       logging.Logger
}

func NewAccountService(users UserRepository, validator EmailValidator, mailer EmailSender, siteURL string, log logging.Logger) *AccountService {
	return &AccountService{
		Users:     users,
		Validator: validator,
		Mailer:    mailer,
		SiteURL:   strings.TrimRight(siteURL, "/"),
		Log:       log,
	}
}

// Register creates an unverified account and mails a verification link.
// If the mail send fails the account still exists (the user can be told
// to retry later) but the failure is reported to the caller as
// ErrMailDelivery.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if violations := ValidateRegistration(username, email, password); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	// Usernames are stored sanitized; length was checked on the raw value.
	username = html.EscapeString(username)
	if err := s.Validator.Validate(ctx, email); err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}

	exists, err := s.Users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	expires := time.Now().Add(VerificationTokenTTL)

	user := &model.User{
		ID:                       uuid.New(),
		Username:                 username,
		Email:                    email,
		PasswordHash:             string(hash),
		IsVerified:               false,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
	}

	if err := s.Users.Create(ctx, user); err != nil {
		// The unique index wins races the EmailExists pre-check loses.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.Log.Error(ctx, "user insert failed", "operation", "register", "email", email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Log.Info(ctx, "new user registered", "email", email)

	if err := s.Mailer.SendVerificationEmail(ctx, email, s.VerifyURL(token)); err != nil {
		// Account row is already committed; see DESIGN.md for the
		// soft-warning decision.
		s.Log.Error(ctx, "verification email failed", "operation", "register", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return user, nil
}

// VerifyEmail consumes a pending verification token. Tokens are strictly
// one-time-use: a second call with the same token fails because the
// first call cleared it. Unknown and expired tokens are reported
// identically so callers cannot probe which it was.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.Users.ConsumeVerificationToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		s.Log.Error(ctx, "token lookup failed", "operation", "verify-email", "error", err)
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	s.Log.Info(ctx, "email verified", "email", user.Email)
	return user, nil
}

// Login authenticates a verified account. Unknown email and wrong
// password share ErrInvalidCredentials so the endpoint cannot be used
// to enumerate accounts; an unverified account is reported distinctly.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AccountSummary, error) {
	email = NormalizeEmail(email)

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.Log.Error(ctx, "user lookup failed", "operation", "login", "email", email, "error", err)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Log.Warn(ctx, "failed login attempt", "email", email)
		return nil, ErrInvalidCredentials
	}

	s.Log.Info(ctx, "user logged in", "email", email)
	return &AccountSummary{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// VerifyURL builds the link embedded in the verification email.
func (s *AccountService) VerifyURL(token string) string {
	return s.SiteURL + "/api/verify-email/" + token
}

func newVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
