package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/integration/cloudinary"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.UserStatus) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id uuid.UUID, role domain.UserRole) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) AdjustFollowerCounts(_ context.Context, _, _ uuid.UUID, _ int) error {
	return nil
}

func (r *fakeUserRepo) PlatformStats(_ context.Context) (*domain.PlatformStats, error) {
	return &domain.PlatformStats{TotalUsers: len(r.users)}, nil
}

// mediaHostStub записывает удаленные public ID, чтобы проверить очистку аватарок.
type mediaHostStub struct {
	destroyed []string
}

func newMediaHostStub() *mediaHostStub {
	return &mediaHostStub{}
}

func (m *mediaHostStub) Upload(_ context.Context, _ io.Reader, filename, _ string) (*cloudinary.UploadResult, error) {
	return &cloudinary.UploadResult{
		PublicID:  "uploads/" + filename,
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/uploads/" + filename,
	}, nil
}

func (m *mediaHostStub) Destroy(_ context.Context, publicID, _ string) error {
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

func (m *mediaHostStub) ExtractPublicID(rawURL string) string {
	// Упрощенный разбор URL доставки: все после "/upload/v1/" без расширения.
	_, rest, ok := strings.Cut(rawURL, "/upload/v1/")
	if !ok {
		return ""
	}
	if idx := strings.LastIndex(rest, "."); idx > 0 {
		rest = rest[:idx]
	}
	return rest
}

const testUserSecret = "user-service-test-secret"

func newTestUserService(t *testing.T, repo *fakeUserRepo, media *mediaHostStub) UserService {
	t.Helper()
	platformMetrics := metrics.NewPlatformMetrics(prometheus.NewRegistry(), logger.NewNop())
	svc := NewUserService(repo, media, platformMetrics, AuthConfig{
		JWTSecret:  []byte(testUserSecret),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger.NewNop())

	impl := svc.(*userService)
	impl.now = func() time.Time { return testNow }
	return svc
}

func registerTestUser(t *testing.T, svc UserService, email, password string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "alice",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, newMediaHostStub())

	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "correct horse",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, domain.UserRoleUser, user.Role)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	// Пароль хранится только в виде хеша
	assert.NotEqual(t, "correct horse", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse")))
}

func TestRegisterDefaultsDisplayNameToUsername(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())

	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.DisplayName)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())
	registerTestUser(t, svc, "alice@example.com", "correct horse")

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "another pass",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, newMediaHostStub())
	user := registerTestUser(t, svc, "alice@example.com", "correct horse")

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.UserID)
	assert.Equal(t, user.Email, resp.User.Email)
	assert.False(t, resp.User.IsAdmin)

	// Токен подписан нашим секретом и несет subject = ID пользователя
	claims := &middleware.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testUserSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return testNow }))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, testNow.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())
	registerTestUser(t, svc, "alice@example.com", "correct horse")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())

	// Несуществующий email дает ту же ошибку, что и неверный пароль
	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginBannedUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, newMediaHostStub())
	user := registerTestUser(t, svc, "alice@example.com", "correct horse")

	require.NoError(t, repo.SetStatus(context.Background(), user.ID, domain.UserStatusBanned))

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())
	user := registerTestUser(t, svc, "alice@example.com", "correct horse")

	bio := "streams on weekends"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, domain.UserUpdateRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "streams on weekends", updated.Bio)
	assert.Equal(t, user.DisplayName, updated.DisplayName)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), newMediaHostStub())

	name := "nobody"
	_, err := svc.UpdateProfile(context.Background(), uuid.New(), domain.UserUpdateRequest{DisplayName: &name})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSetProfilePictureDestroysOldAsset(t *testing.T) {
	media := newMediaHostStub()
	svc := newTestUserService(t, newFakeUserRepo(), media)
	user := registerTestUser(t, svc, "alice@example.com", "correct horse")

	_, err := svc.SetProfilePicture(context.Background(), user.ID,
		"https://res.cloudinary.com/demo/image/upload/v1/avatars/old.jpg")
	require.NoError(t, err)
	assert.Empty(t, media.destroyed, "first avatar has nothing to replace")

	updated, err := svc.SetProfilePicture(context.Background(), user.ID,
		"https://res.cloudinary.com/demo/image/upload/v1/avatars/new.jpg")
	require.NoError(t, err)
	assert.Contains(t, updated.ProfilePicture, "avatars/new.jpg")
	assert.Equal(t, []string{"avatars/old"}, media.destroyed)
}

func TestDeleteAccount(t *testing.T) {
	repo := newFakeUserRepo()
	media := newMediaHostStub()
	svc := newTestUserService(t, repo, media)
	user := registerTestUser(t, svc, "alice@example.com", "correct horse")

	_, err := svc.SetProfilePicture(context.Background(), user.ID,
		"https://res.cloudinary.com/demo/image/upload/v1/avatars/alice.jpg")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))

	_, err = svc.GetProfile(context.Background(), user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Contains(t, media.destroyed, "avatars/alice")
}
