package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/storage"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/token"
)

var (
	// ErrEmailTaken is returned when the email already belongs to an account
	// in either identity table.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountNotFound is returned when a token subject no longer resolves.
	ErrAccountNotFound = errors.New("account not found")
	// ErrValidation wraps user-correctable input problems.
	ErrValidation = errors.New("validation failed")
)

// RegisterUserInput carries the fields accepted from user sign-up.
type RegisterUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// RegisterExpertInput extends user sign-up with the practice profile.
type RegisterExpertInput struct {
	RegisterUserInput
	Specialization  string
	ExperienceYears int
}

// Profile is the sanitized account with its resolved image URL.
type Profile struct {
	Account  *domain.Account
	ImageURL string
}

// AccountService creates accounts and serves profile data.
type AccountService interface {
	RegisterUser(ctx context.Context, in RegisterUserInput) (*AuthResult, error)
	RegisterExpert(ctx context.Context, in RegisterExpertInput) (*AuthResult, error)
	Profile(ctx context.Context, id string, kind domain.AccountKind) (*Profile, error)
	UpdateAvatar(ctx context.Context, id string, kind domain.AccountKind, filename, contentType string, content io.Reader) (string, error)
}

type accountService struct {
	sources accountSources
	assets  storage.Service
	issuer  *token.Issuer
	logger  *logrus.Logger
}

func NewAccountService(
	users repository.UserRepository,
	experts repository.ExpertRepository,
	admins repository.AdminRepository,
	assets storage.Service,
	issuer *token.Issuer,
	logger *logrus.Logger,
) AccountService {
	return &accountService{
		sources: accountSources{users: users, experts: experts, admins: admins},
		assets:  assets,
		issuer:  issuer,
		logger:  logger,
	}
}

// RegisterUser creates a standard account and replies with the same shape a
// login produces, so clients are signed in immediately.
func (s *accountService) RegisterUser(ctx context.Context, in RegisterUserInput) (*AuthResult, error) {
	email, hash, err := s.validateSignup(ctx, in)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.sources.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	account := &domain.Account{Kind: domain.KindUser, User: user}
	return shapeAuthResult(ctx, account, s.assets, s.issuer, s.logger)
}

// RegisterExpert creates a practitioner account. Verification starts pending
// and the lockout counters start clean.
func (s *accountService) RegisterExpert(ctx context.Context, in RegisterExpertInput) (*AuthResult, error) {
	email, hash, err := s.validateSignup(ctx, in.RegisterUserInput)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Specialization) == "" {
		return nil, fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	if in.ExperienceYears < 0 {
		return nil, fmt.Errorf("%w: experience years cannot be negative", ErrValidation)
	}

	expert := &domain.Expert{
		ID:                 uuid.NewString(),
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Email:              email,
		Phone:              strings.TrimSpace(in.Phone),
		PasswordHash:       hash,
		IsActive:           true,
		Specialization:     strings.TrimSpace(in.Specialization),
		ExperienceYears:    in.ExperienceYears,
		VerificationStatus: domain.VerificationPending,
	}
	if err := s.sources.experts.Create(ctx, expert); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create expert: %w", err)
	}

	account := &domain.Account{Kind: domain.KindExpert, Expert: expert}
	return shapeAuthResult(ctx, account, s.assets, s.issuer, s.logger)
}

// Profile loads and sanitizes the account bound to a verified token subject.
func (s *accountService) Profile(ctx context.Context, id string, kind domain.AccountKind) (*Profile, error) {
	account, err := s.sources.byID(ctx, id, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	account.Sanitize()
	return &Profile{
		Account:  account,
		ImageURL: resolveImageURL(ctx, s.assets, s.logger, account),
	}, nil
}

// UpdateAvatar stores the uploaded image and persists its key on the
// account. Returns the resolved URL for the stored object.
func (s *accountService) UpdateAvatar(ctx context.Context, id string, kind domain.AccountKind, filename, contentType string, content io.Reader) (string, error) {
	account, err := s.sources.byID(ctx, id, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("load account: %w", err)
	}

	if account.Kind != domain.KindUser && account.Kind != domain.KindExpert {
		return "", fmt.Errorf("%w: account kind %q has no profile image", ErrValidation, kind)
	}

	key := "avatars/" + uuid.NewString() + sanitizeExt(filename)
	if err := s.assets.Upload(ctx, key, contentType, content); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if account.Kind == domain.KindExpert {
		err = s.sources.experts.UpdateProfileImage(ctx, id, key)
	} else {
		err = s.sources.users.UpdateProfileImage(ctx, id, key)
	}
	if err != nil {
		return "", fmt.Errorf("persist avatar key: %w", err)
	}

	url, err := s.assets.ResolveURL(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("resolve avatar url")
		return "", nil
	}
	return url, nil
}

// validateSignup trims and checks the shared sign-up fields and enforces
// email uniqueness across both identity tables. The unified login resolves
// experts first, so an email existing in both tables would silently shadow
// the standard account.
func (s *accountService) validateSignup(ctx context.Context, in RegisterUserInput) (email, hash string, err error) {
	email = strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)

	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return "", "", fmt.Errorf("%w: first name is required", ErrValidation)
	case email == "":
		return "", "", fmt.Errorf("%w: email is required", ErrValidation)
	case !strings.Contains(email, "@"):
		return "", "", fmt.Errorf("%w: email is malformed", ErrValidation)
	case password == "":
		return "", "", fmt.Errorf("%w: password is required", ErrValidation)
	case len(password) < 8:
		return "", "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	if taken, err := s.emailTaken(ctx, email); err != nil {
		return "", "", err
	} else if taken {
		return "", "", ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return email, string(hashed), nil
}

func (s *accountService) emailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.sources.experts.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("check expert email: %w", err)
	}
	if _, err := s.sources.users.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return false, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
