// Package identity is the storefront's identity provider: password and
// federated sign-in, bearer sessions and password reset.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/notify"
	accountrepo "valentine-storefront/internal/repository/account"
	profilerepo "valentine-storefront/internal/repository/profile"
	tokenrepo "valentine-storefront/internal/repository/token"
)

// FederatedClaims is what a verified third-party ID token tells us.
type FederatedClaims struct {
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
}

// FederatedVerifier checks ID tokens issued by an external provider.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedClaims, error)
}

// Service handles sign-up, sign-in and session lookup.
type Service struct {
	accounts    accountrepo.Repository
	profiles    profilerepo.Repository
	tokens      *tokenManager
	verifier    FederatedVerifier
	publisher   notify.Publisher
	logger      zerolog.Logger
	validate    *validator.Validate
	throttle    *throttle
	now         func() time.Time
	accessTTL   time.Duration
	resetTTL    time.Duration
	passwordMin int
}

// Option customizes a Service.
type Option func(*Service)

// WithFederated enables SignInFederated.
func WithFederated(v FederatedVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.tokens.now = now
	}
}

// New creates a Service with sane defaults.
func New(accounts accountrepo.Repository, tokens tokenrepo.Repository, profiles profilerepo.Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		accounts:    accounts,
		profiles:    profiles,
		tokens:      newTokenManager(tokens),
		publisher:   notify.Nop{},
		logger:      logger,
		validate:    validator.New(),
		throttle:    newThrottle(5, 15*time.Minute),
		now:         time.Now,
		accessTTL:   14 * 24 * time.Hour,
		resetTTL:    time.Hour,
		passwordMin: 6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileExtras are optional fields captured at sign-up.
type ProfileExtras struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Result is a signed-in identity with its bearer token.
type Result struct {
	Identity  domain.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn"`
}

// SignUp creates a password account and its profile document, then signs in.
func (s *Service) SignUp(ctx context.Context, email, password string, extras ProfileExtras) (*Result, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len([]rune(password)) < s.passwordMin {
		return nil, &domain.AuthError{Code: domain.AuthWeakPassword}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.Create(ctx, domain.Account{
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  strings.TrimSpace(extras.DisplayName),
		PhotoURL:     strings.TrimSpace(extras.PhotoURL),
		Provider:     domain.ProviderPassword,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, &domain.AuthError{Code: domain.AuthEmailInUse}
		}
		return nil, err
	}
	s.createProfile(ctx, *acct)
	s.logger.Info().Str("uid", acct.UID).Msg("account created")
	return s.issue(ctx, *acct)
}

// SignIn checks an email and password. Unknown emails and wrong passwords
// fail the same way.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Result, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if s.throttle.blocked(email, s.now()) {
		return nil, &domain.AuthError{Code: domain.AuthTooManyRequests}
	}
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.throttle.fail(email, s.now())
			return nil, &domain.AuthError{Code: domain.AuthInvalidCredential}
		}
		return nil, err
	}
	if acct.PasswordHash == "" {
		// Federated-only account.
		s.throttle.fail(email, s.now())
		return nil, &domain.AuthError{Code: domain.AuthInvalidCredential, Detail: "no password set"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.throttle.fail(email, s.now())
		return nil, &domain.AuthError{Code: domain.AuthInvalidCredential}
	}
	s.throttle.reset(email)
	return s.issue(ctx, *acct)
}

// SignInFederated verifies a provider ID token and signs in the matching
// account, creating it on first use.
func (s *Service) SignInFederated(ctx context.Context, idToken string) (*Result, error) {
	if s.verifier == nil {
		return nil, &domain.AuthError{Code: domain.AuthUnauthorizedDomain, Detail: "federated sign-in is not configured"}
	}
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, &domain.AuthError{Code: domain.AuthInvalidCredential, Detail: err.Error()}
	}
	// Accounts are linked by email, so the provider must vouch for it.
	if !claims.EmailVerified {
		return nil, &domain.AuthError{Code: domain.AuthInvalidCredential, Detail: "email not verified"}
	}
	email, err := s.normalizeEmail(claims.Email)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		acct, err = s.accounts.Create(ctx, domain.Account{
			Email:       email,
			DisplayName: claims.DisplayName,
			PhotoURL:    claims.PhotoURL,
			Provider:    domain.ProviderGoogle,
		})
		if err != nil {
			return nil, err
		}
		s.createProfile(ctx, *acct)
		s.logger.Info().Str("uid", acct.UID).Msg("federated account created")
	default:
		return nil, err
	}
	return s.issue(ctx, *acct)
}

// SignOut revokes token. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// CurrentIdentity resolves a bearer token.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	uid, ok := s.tokens.Validate(ctx, token, tokenrepo.KindAccess)
	if !ok {
		return nil, &domain.AuthError{Code: domain.AuthInvalidToken}
	}
	acct, err := s.accounts.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.AuthError{Code: domain.AuthInvalidToken}
		}
		return nil, err
	}
	id := acct.Identity()
	return &id, nil
}

// SendPasswordReset issues a reset token and hands it to the notification
// channel. Unknown emails succeed silently.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return err
	}
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}
	token, err := s.tokens.Issue(ctx, acct.UID, tokenrepo.KindReset, s.resetTTL)
	if err != nil {
		return err
	}
	err = s.publisher.Publish(ctx, notify.Event{
		Type: notify.TypePasswordReset,
		Key:  acct.UID,
		Payload: map[string]any{
			"email":     acct.Email,
			"token":     token,
			"expiresAt": s.now().Add(s.resetTTL).UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("publish password reset: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using a token from SendPasswordReset.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	uid, ok := s.tokens.Validate(ctx, resetToken, tokenrepo.KindReset)
	if !ok {
		return &domain.AuthError{Code: domain.AuthInvalidToken}
	}
	if len([]rune(newPassword)) < s.passwordMin {
		return &domain.AuthError{Code: domain.AuthWeakPassword}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, uid, string(hashed)); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, resetToken)
}

// ListSignInMethods reports the providers an email can sign in with.
func (s *Service) ListSignInMethods(ctx context.Context, email string) ([]string, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	methods := []string{acct.Provider}
	if acct.Provider != domain.ProviderPassword && acct.PasswordHash != "" {
		methods = append(methods, domain.ProviderPassword)
	}
	return methods, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) issue(ctx context.Context, acct domain.Account) (*Result, error) {
	token, err := s.tokens.Issue(ctx, acct.UID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &Result{Identity: acct.Identity(), Token: token, ExpiresIn: s.AccessTTLSeconds()}, nil
}

func (s *Service) createProfile(ctx context.Context, acct domain.Account) {
	if s.profiles == nil {
		return
	}
	err := s.profiles.Create(ctx, domain.Profile{
		UID:         acct.UID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		PhotoURL:    acct.PhotoURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("uid", acct.UID).Msg("profile document not created")
	}
}

func (s *Service) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", &domain.AuthError{Code: domain.AuthInvalidEmail}
	}
	return email, nil
}
