package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/storage"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/token"
)

var (
	// ErrCredentialsRequired indicates the request is missing email or password.
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// callers cannot probe which addresses have accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked indicates the expert account is inside its lockout window.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrAccountDeactivated indicates the account exists but was disabled.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrInvalidRefreshToken indicates the presented refresh token is unusable.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// LockoutPolicy controls failed-attempt tracking for expert accounts.
type LockoutPolicy struct {
	MaxAttempts int
	LockWindow  time.Duration
}

// AuthResult is what a successful authentication hands back: the sanitized
// account, its resolved profile image URL when one exists, and a token pair.
type AuthResult struct {
	Account  *domain.Account
	ImageURL string
	Tokens   token.Pair
}

// AuthService authenticates accounts and refreshes their sessions.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
}

// accountSources bundles the identity repositories account-facing services
// resolve against.
type accountSources struct {
	users   repository.UserRepository
	experts repository.ExpertRepository
	admins  repository.AdminRepository
}

func (s accountSources) byID(ctx context.Context, id string, kind domain.AccountKind) (*domain.Account, error) {
	switch kind {
	case domain.KindExpert:
		expert, err := s.experts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.Account{Kind: domain.KindExpert, Expert: expert}, nil
	case domain.KindAdmin:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.Account{Kind: domain.KindAdmin, Admin: admin}, nil
	case domain.KindUser:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.Account{Kind: domain.KindUser, User: user}, nil
	}
	return nil, repository.ErrNotFound
}

type authService struct {
	sources accountSources
	assets  storage.Service
	issuer  *token.Issuer
	lockout LockoutPolicy
	logger  *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	experts repository.ExpertRepository,
	admins repository.AdminRepository,
	assets storage.Service,
	issuer *token.Issuer,
	lockout LockoutPolicy,
	logger *logrus.Logger,
) AuthService {
	if lockout.MaxAttempts <= 0 {
		lockout.MaxAttempts = 5
	}
	if lockout.LockWindow <= 0 {
		lockout.LockWindow = 15 * time.Minute
	}
	return &authService{
		sources: accountSources{users: users, experts: experts, admins: admins},
		assets:  assets,
		issuer:  issuer,
		lockout: lockout,
		logger:  logger,
	}
}

// Login resolves the email against experts first, then users, applies the
// lockout, active, and credential gates in that order, and issues a token
// pair for the matched account.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	account, err := s.resolveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account.Kind == domain.KindExpert && account.Expert.Locked(time.Now().UTC()) {
		return nil, ErrAccountLocked
	}
	if !account.IsActive() {
		return nil, ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash()), []byte(password)); err != nil {
		if account.Kind == domain.KindExpert {
			s.recordFailedAttempt(ctx, account.Expert.ID)
		}
		return nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, account)

	return shapeAuthResult(ctx, account, s.assets, s.issuer, s.logger)
}

// AdminLogin authenticates against the admin table only. Admin accounts are
// seeded rather than self-served and carry no lockout state.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	admin, err := s.sources.admins.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("admin lookup failed")
		}
		return nil, ErrInvalidCredentials
	}
	account := &domain.Account{Kind: domain.KindAdmin, Admin: admin}

	if !account.IsActive() {
		return nil, ErrAccountDeactivated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, account)

	return shapeAuthResult(ctx, account, s.assets, s.issuer, s.logger)
}

// Refresh exchanges a refresh token for a new pair. The account is re-read
// and the lockout and active gates re-applied, so a refresh cannot outlive a
// deactivation or lockout.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	kind := domain.AccountKind(claims.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.sources.byID(ctx, claims.Subject, kind)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("refresh account lookup failed")
		}
		return nil, ErrInvalidRefreshToken
	}

	if account.Kind == domain.KindExpert && account.Expert.Locked(time.Now().UTC()) {
		return nil, ErrAccountLocked
	}
	if !account.IsActive() {
		return nil, ErrAccountDeactivated
	}

	return shapeAuthResult(ctx, account, s.assets, s.issuer, s.logger)
}

// resolveByEmail performs the ordered two-table lookup. Expert wins when the
// email exists in both tables. Store failures other than not-found are
// recorded and reported as invalid credentials so internals never leak.
func (s *authService) resolveByEmail(ctx context.Context, email string) (*domain.Account, error) {
	expert, err := s.sources.experts.GetByEmail(ctx, email)
	if err == nil {
		return &domain.Account{Kind: domain.KindExpert, Expert: expert}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("expert lookup failed")
		return nil, ErrInvalidCredentials
	}

	user, err := s.sources.users.GetByEmail(ctx, email)
	if err == nil {
		return &domain.Account{Kind: domain.KindUser, User: user}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("user lookup failed")
	}
	return nil, ErrInvalidCredentials
}

// recordFailedAttempt is best-effort: a tracker failure must not change the
// login outcome.
func (s *authService) recordFailedAttempt(ctx context.Context, expertID string) {
	lockUntil := time.Now().UTC().Add(s.lockout.LockWindow)
	if err := s.sources.experts.RecordFailedLogin(ctx, expertID, s.lockout.MaxAttempts, lockUntil); err != nil {
		s.logger.WithError(err).WithField("expert_id", expertID).Warn("record failed login attempt")
	}
}

// touchLastLogin is best-effort: a persistence failure is logged and the
// login still succeeds.
func (s *authService) touchLastLogin(ctx context.Context, account *domain.Account) {
	now := time.Now().UTC()
	var err error
	switch account.Kind {
	case domain.KindExpert:
		err = s.sources.experts.UpdateLastLogin(ctx, account.Expert.ID, now)
	case domain.KindAdmin:
		err = s.sources.admins.UpdateLastLogin(ctx, account.Admin.ID, now)
	default:
		err = s.sources.users.UpdateLastLogin(ctx, account.User.ID, now)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"account_id": account.ID(),
			"kind":       account.Kind,
		}).Warn("persist last login")
	}
}

// shapeAuthResult sanitizes the account, resolves its profile image, and
// issues the token pair. Image resolution is best-effort; the URL stays
// empty when the locator fails.
func shapeAuthResult(ctx context.Context, account *domain.Account, assets storage.Service, issuer *token.Issuer, logger *logrus.Logger) (*AuthResult, error) {
	account.Sanitize()

	pair, err := issuer.IssuePair(account.ID(), string(account.Kind))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &AuthResult{
		Account:  account,
		ImageURL: resolveImageURL(ctx, assets, logger, account),
		Tokens:   pair,
	}, nil
}

func resolveImageURL(ctx context.Context, assets storage.Service, logger *logrus.Logger, account *domain.Account) string {
	key := account.ProfileImage()
	if key == "" {
		return ""
	}
	url, err := assets.ResolveURL(ctx, key)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("resolve profile image")
		return ""
	}
	return url
}
