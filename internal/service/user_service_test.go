package service

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/avatar"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/social"
	"github.com/mmynk/homebase/internal/storage/sqlstore"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

type userFixture struct {
	svc       *UserService
	store     *sqlstore.Store
	authn     *auth.PasswordAuthenticator
	tokens    *auth.TokenManager
	mediaRoot string
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	store := newTestStore(t)
	authn := auth.NewPasswordAuthenticator(store, auth.WithBcryptCost(bcrypt.MinCost))
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", 5*time.Minute, 24*time.Hour)
	mediaRoot := t.TempDir()
	avatars := AvatarConfig{Store: avatar.NewStore(mediaRoot), MediaURL: "/media/", MaxBytes: 1024}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return &userFixture{
		svc:       NewUserService(store, authn, tokens, avatars, logger),
		store:     store,
		authn:     authn,
		tokens:    tokens,
		mediaRoot: mediaRoot,
	}
}

func (f *userFixture) register(t *testing.T, email string) *Profile {
	t.Helper()

	p, err := f.svc.Register(context.Background(), RegisterInput{
		Email: email, FirstName: "Jane", LastName: "Doe",
		Password: "password123", RePassword: "password123",
	})
	require.NoError(t, err)
	return p
}

func TestUserService_Register(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	p := f.register(t, " Jane@Example.com ")
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Nil(t, p.Avatar)

	tests := []struct {
		name string
		in   RegisterInput
		want string
	}{
		{"duplicate", RegisterInput{Email: "JANE@example.com", Password: "password123", RePassword: "password123"}, "User with this email already exists"},
		{"mismatch", RegisterInput{Email: "a@b.com", Password: "password123", RePassword: "password124"}, "The two password fields didn't match"},
		{"weak", RegisterInput{Email: "a@b.com", Password: "short", RePassword: "short"}, "Password must be at least 8 characters"},
		{"bad email", RegisterInput{Email: "nobody", Password: "password123", RePassword: "password123"}, "Enter a valid email address"},
		{"missing", RegisterInput{}, "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.in)
			requireCode(t, err, apperr.CodeValidation)
			e, _ := apperr.As(err)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestUserService_LoginRefreshVerify(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	p := f.register(t, "jane@example.com")

	pair, err := f.svc.Login(ctx, "JANE@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	require.NoError(t, f.svc.Verify(pair.Access))
	requireCode(t, f.svc.Verify(pair.Refresh), apperr.CodeUnauthenticated)
	requireCode(t, f.svc.Verify(""), apperr.CodeUnauthenticated)

	user, err := f.svc.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, p.ID, user.ID)

	access, err := f.svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(access))

	_, err = f.svc.Refresh(ctx, pair.Access)
	requireCode(t, err, apperr.CodeUnauthenticated)

	_, err = f.svc.Login(ctx, "jane@example.com", "wrong-password")
	requireCode(t, err, apperr.CodeUnauthenticated)
	_, err = f.svc.Login(ctx, "nobody@example.com", "password123")
	requireCode(t, err, apperr.CodeUnauthenticated)
	_, err = f.svc.Login(ctx, "", "")
	requireCode(t, err, apperr.CodeValidation)
}

func TestUserService_InactiveUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	hash, err := f.authn.HashPassword("password123")
	require.NoError(t, err)
	user := models.NewUser("off@example.com", "", "", hash)
	user.IsActive = false
	require.NoError(t, f.store.CreateUser(ctx, user))

	_, err = f.svc.Login(ctx, "off@example.com", "password123")
	requireCode(t, err, apperr.CodeUnauthenticated)

	// Tokens minted before deactivation stop working.
	pair, err := f.tokens.GeneratePair(user.ID)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, pair.Access)
	requireCode(t, err, apperr.CodeUnauthenticated)
	_, err = f.svc.Refresh(ctx, pair.Refresh)
	requireCode(t, err, apperr.CodeUnauthenticated)
}

func TestUserService_Avatar(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	p := f.register(t, "jane@example.com")
	userDir := filepath.Join(f.mediaRoot, "images", "avatars", "1")

	_, err := f.svc.UploadAvatar(ctx, p.ID, 4096, bytes.NewReader(pngBytes))
	requireCode(t, err, apperr.CodePayloadTooLarge)
	_, err = f.svc.UploadAvatar(ctx, p.ID, 10, bytes.NewReader(bytes.Repeat(pngBytes, 100)))
	requireCode(t, err, apperr.CodePayloadTooLarge)
	assert.NoDirExists(t, userDir, "oversized uploads must not touch the filesystem")

	_, err = f.svc.UploadAvatar(ctx, p.ID, 5, strings.NewReader("hello"))
	requireCode(t, err, apperr.CodeInternal)
	assert.NoDirExists(t, userDir)

	first, err := f.svc.UploadAvatar(ctx, p.ID, int64(len(pngBytes)), bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "/media/images/avatars/1/"), first)
	assert.True(t, strings.HasSuffix(first, ".png"), first)
	firstPath := filepath.Join(f.mediaRoot, filepath.FromSlash(strings.TrimPrefix(first, "/media/")))
	assert.FileExists(t, firstPath)

	second, err := f.svc.UploadAvatar(ctx, p.ID, int64(len(pngBytes)), bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, firstPath, "previous avatar must be removed")

	me, err := f.svc.Me(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Avatar)
	assert.Equal(t, second, *me.Avatar)

	require.NoError(t, f.svc.DeleteAvatar(ctx, p.ID))
	assert.NoDirExists(t, userDir, "empty avatar directory must be pruned")
	me, err = f.svc.Me(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, me.Avatar)

	// Nothing left to delete.
	require.NoError(t, f.svc.DeleteAvatar(ctx, p.ID))
}

func TestUserService_DeleteAccount(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	p := f.register(t, "jane@example.com")

	_, err := f.svc.UploadAvatar(ctx, p.ID, int64(len(pngBytes)), bytes.NewReader(pngBytes))
	require.NoError(t, err)
	_, err = NewTaskService(f.store).Create(ctx, p.ID, TaskInput{Label: "t", Description: "d"})
	require.NoError(t, err)

	requireCode(t, f.svc.DeleteAccount(ctx, p.ID, "wrong-password"), apperr.CodeValidation)
	requireCode(t, f.svc.DeleteAccount(ctx, p.ID, ""), apperr.CodeValidation)

	require.NoError(t, f.svc.DeleteAccount(ctx, p.ID, "password123"))

	_, err = f.svc.Me(ctx, p.ID)
	requireCode(t, err, apperr.CodeNotFound)
	tasks, err := f.store.ListTasks(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoDirExists(t, filepath.Join(f.mediaRoot, "images", "avatars", "1"))
}

func TestUserService_SocialLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	pair, p, err := f.svc.SocialLogin(ctx, social.Identity{Email: " Sam@Example.com", FirstName: "Sam", LastName: "Lee"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(pair.Access))
	assert.Equal(t, "sam@example.com", p.Email)
	assert.Equal(t, "Sam", p.FirstName)

	// The second sign-in finds the same account.
	_, again, err := f.svc.SocialLogin(ctx, social.Identity{Email: "sam@example.com"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Sam", again.FirstName)

	// No password was ever set.
	_, err = f.svc.Login(ctx, "sam@example.com", auth.UnusablePassword)
	requireCode(t, err, apperr.CodeUnauthenticated)

	// An existing password account is reused, not duplicated.
	jane := f.register(t, "jane@example.com")
	_, linked, err := f.svc.SocialLogin(ctx, social.Identity{Email: "JANE@example.com"})
	require.NoError(t, err)
	assert.Equal(t, jane.ID, linked.ID)
	_, err = f.svc.Login(ctx, "jane@example.com", "password123")
	require.NoError(t, err)

	_, _, err = f.svc.SocialLogin(ctx, social.Identity{Email: "not-an-email"})
	requireCode(t, err, apperr.CodeValidation)
}

func TestUserService_SocialLoginInactive(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user := models.NewUser("off@example.com", "", "", auth.UnusablePassword)
	user.IsActive = false
	require.NoError(t, f.store.CreateUser(ctx, user))

	_, _, err := f.svc.SocialLogin(ctx, social.Identity{Email: "off@example.com"})
	requireCode(t, err, apperr.CodeUnauthenticated)
}
