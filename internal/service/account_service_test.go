package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/service"
)

func newAccountService(users *memoryUserRepo, experts *memoryExpertRepo, admins *memoryAdminRepo, assets *fakeAssets) service.AccountService {
	return service.NewAccountService(users, experts, admins, assets, newTestIssuer(), newTestLogger())
}

func validUserInput() service.RegisterUserInput {
	return service.RegisterUserInput{
		FirstName: "Dana",
		LastName:  "Lee",
		Email:     "dana@x.com",
		Phone:     "555-0101",
		Password:  "correct-horse",
	}
}

func TestRegisterUser(t *testing.T) {
	users := &memoryUserRepo{}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	result, err := svc.RegisterUser(context.Background(), validUserInput())
	require.NoError(t, err)
	require.Equal(t, domain.KindUser, result.Account.Kind)
	require.NotEmpty(t, result.Account.ID())
	require.Empty(t, result.Account.PasswordHash())
	require.NotEmpty(t, result.Tokens.Token)
	require.NotEmpty(t, result.Tokens.RefreshToken)

	require.NotNil(t, users.user)
	require.True(t, users.user.IsActive)
	require.NotEqual(t, "correct-horse", users.user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.user.PasswordHash), []byte("correct-horse")))
}

func TestRegisterUserNormalizesEmail(t *testing.T) {
	users := &memoryUserRepo{}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	in := validUserInput()
	in.Email = "  Dana@X.COM "
	_, err := svc.RegisterUser(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "dana@x.com", users.user.Email)
}

func TestRegisterUserValidation(t *testing.T) {
	svc := newAccountService(&memoryUserRepo{}, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	for name, mutate := range map[string]func(*service.RegisterUserInput){
		"missing first name": func(in *service.RegisterUserInput) { in.FirstName = " " },
		"missing email":      func(in *service.RegisterUserInput) { in.Email = "" },
		"malformed email":    func(in *service.RegisterUserInput) { in.Email = "not-an-email" },
		"missing password":   func(in *service.RegisterUserInput) { in.Password = "" },
		"short password":     func(in *service.RegisterUserInput) { in.Password = "short" },
	} {
		in := validUserInput()
		mutate(&in)
		_, err := svc.RegisterUser(context.Background(), in)
		require.ErrorIs(t, err, service.ErrValidation, name)
	}
}

func TestRegisterUserEmailConflicts(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)

	// Same table.
	users := &memoryUserRepo{user: activeUser("dana@x.com", string(hash))}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})
	_, err := svc.RegisterUser(context.Background(), validUserInput())
	require.ErrorIs(t, err, service.ErrEmailTaken)

	// Cross-table: an expert already owns the email, and expert-first
	// resolution would shadow a user row forever.
	experts := &memoryExpertRepo{expert: activeExpert("dana@x.com", string(hash))}
	svc = newAccountService(&memoryUserRepo{}, experts, &memoryAdminRepo{}, &fakeAssets{})
	_, err = svc.RegisterUser(context.Background(), validUserInput())
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterExpert(t *testing.T) {
	experts := &memoryExpertRepo{}
	svc := newAccountService(&memoryUserRepo{}, experts, &memoryAdminRepo{}, &fakeAssets{})

	result, err := svc.RegisterExpert(context.Background(), service.RegisterExpertInput{
		RegisterUserInput: validUserInput(),
		Specialization:    "yoga therapy",
		ExperienceYears:   4,
	})
	require.NoError(t, err)
	require.Equal(t, domain.KindExpert, result.Account.Kind)
	require.Equal(t, "yoga therapy", result.Account.Expert.Specialization)
	require.Equal(t, domain.VerificationPending, result.Account.Expert.VerificationStatus)
	require.Zero(t, result.Account.Expert.LoginAttempts)
	require.Nil(t, result.Account.Expert.LockUntil)
	require.Empty(t, result.Account.PasswordHash())
}

func TestRegisterExpertValidation(t *testing.T) {
	svc := newAccountService(&memoryUserRepo{}, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	_, err := svc.RegisterExpert(context.Background(), service.RegisterExpertInput{
		RegisterUserInput: validUserInput(),
		Specialization:    "  ",
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.RegisterExpert(context.Background(), service.RegisterExpertInput{
		RegisterUserInput: validUserInput(),
		Specialization:    "yoga therapy",
		ExperienceYears:   -1,
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestRegisterExpertEmailHeldByUser(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	users := &memoryUserRepo{user: activeUser("dana@x.com", string(hash))}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	_, err := svc.RegisterExpert(context.Background(), service.RegisterExpertInput{
		RegisterUserInput: validUserInput(),
		Specialization:    "yoga therapy",
	})
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestProfile(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	user := activeUser("dana@x.com", string(hash))
	user.ProfileImage = "avatars/dana.png"
	svc := newAccountService(&memoryUserRepo{user: user}, &memoryExpertRepo{}, &memoryAdminRepo{}, &fakeAssets{})

	profile, err := svc.Profile(context.Background(), "user-1", domain.KindUser)
	require.NoError(t, err)
	require.Equal(t, "dana@x.com", profile.Account.Email())
	require.Empty(t, profile.Account.PasswordHash())
	require.Equal(t, "https://cdn.test/avatars/dana.png", profile.ImageURL)

	_, err = svc.Profile(context.Background(), "ghost", domain.KindUser)
	require.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	users := &memoryUserRepo{user: activeUser("dana@x.com", string(hash))}
	assets := &fakeAssets{}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, assets)

	url, err := svc.UpdateAvatar(context.Background(), "user-1", domain.KindUser, "me.PNG", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	require.Len(t, assets.uploadedKeys, 1)

	key := assets.uploadedKeys[0]
	require.True(t, strings.HasPrefix(key, "avatars/"))
	require.True(t, strings.HasSuffix(key, ".png"))
	require.Equal(t, key, users.user.ProfileImage)
	require.Equal(t, "https://cdn.test/"+key, url)
}

func TestUpdateAvatarExpert(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	experts := &memoryExpertRepo{expert: activeExpert("maya@x.com", string(hash))}
	assets := &fakeAssets{}
	svc := newAccountService(&memoryUserRepo{}, experts, &memoryAdminRepo{}, assets)

	_, err := svc.UpdateAvatar(context.Background(), "expert-1", domain.KindExpert, "pic.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	require.NotEmpty(t, experts.expert.ProfileImage)
}

func TestUpdateAvatarRejectsAdminKind(t *testing.T) {
	admins := &memoryAdminRepo{admin: &domain.Admin{ID: "admin-1", Email: "admin@x.com", IsActive: true}}
	svc := newAccountService(&memoryUserRepo{}, &memoryExpertRepo{}, admins, &fakeAssets{})

	_, err := svc.UpdateAvatar(context.Background(), "admin-1", domain.KindAdmin, "pic.jpg", "image/jpeg", strings.NewReader("img"))
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateAvatarUploadFailure(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("whatever1"), bcrypt.MinCost)
	users := &memoryUserRepo{user: activeUser("dana@x.com", string(hash))}
	assets := &fakeAssets{uploadErr: errors.New("bucket gone")}
	svc := newAccountService(users, &memoryExpertRepo{}, &memoryAdminRepo{}, assets)

	_, err := svc.UpdateAvatar(context.Background(), "user-1", domain.KindUser, "pic.jpg", "image/jpeg", strings.NewReader("img"))
	require.Error(t, err)
	require.Empty(t, users.user.ProfileImage)
}
