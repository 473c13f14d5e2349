package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/avatar"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/social"
	"github.com/mmynk/homebase/internal/storage"
	"github.com/mmynk/homebase/internal/validate"
)

const nameMaxLen = 255

// Profile is the public view of a user account.
type Profile struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

// RegisterInput is the payload of an account registration.
type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	RePassword string
}

// AvatarConfig controls where avatars live and how large they may be.
type AvatarConfig struct {
	Store    *avatar.Store
	MediaURL string
	MaxBytes int64
}

// UserService handles accounts, sessions and avatars.
type UserService struct {
	store         storage.UserStore
	authenticator auth.Authenticator
	tokens        *auth.TokenManager
	avatars       AvatarConfig
	logger        *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store storage.UserStore, authenticator auth.Authenticator, tokens *auth.TokenManager, avatars AvatarConfig, logger *slog.Logger) *UserService {
	return &UserService{
		store:         store,
		authenticator: authenticator,
		tokens:        tokens,
		avatars:       avatars,
		logger:        logger,
	}
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	email := models.NormalizeEmail(in.Email)
	if err := validate.Required(
		validate.Field{Name: "email", Value: email},
		validate.Field{Name: "password", Value: in.Password},
	); err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("Enter a valid email address")
	}
	for _, f := range []validate.Field{
		{Name: "email", Value: email},
		{Name: "first name", Value: in.FirstName},
		{Name: "last name", Value: in.LastName},
	} {
		if err := validate.MaxLen(f.Name, f.Value, nameMaxLen); err != nil {
			return nil, err
		}
	}
	if in.Password != in.RePassword {
		return nil, apperr.Validation("The two password fields didn't match")
	}

	user, err := s.authenticator.Register(ctx, email, in.FirstName, in.LastName, in.Password)
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		return nil, apperr.Validation(capitalizeFirst(err.Error()))
	case errors.Is(err, auth.ErrEmailExists):
		return nil, apperr.Validation("User with this email already exists")
	case err != nil:
		s.logger.Error("Registration failed", "email", email, "error", err)
		return nil, apperr.Internal("Internal server error", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return s.profile(user), nil
}

// Login checks credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	if err := validate.Required(
		validate.Field{Name: "email", Value: email},
		validate.Field{Name: "password", Value: password},
	); err != nil {
		return auth.TokenPair{}, err
	}

	user, err := s.authenticator.Authenticate(ctx, models.NormalizeEmail(email), password)
	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInactiveUser) {
		s.logger.Warn("Login failed", "error", err)
		return auth.TokenPair{}, apperr.Unauthenticated("No active account found with the given credentials")
	}
	if err != nil {
		s.logger.Error("Login failed", "error", err)
		return auth.TokenPair{}, apperr.Internal("Internal server error", err)
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate tokens", "user_id", user.ID, "error", err)
		return auth.TokenPair{}, apperr.Internal("Internal server error", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return pair, nil
}

// SocialLogin signs in the account a provider vouched for, creating it on
// first use. Accounts created here have no usable password.
func (s *UserService) SocialLogin(ctx context.Context, id social.Identity) (auth.TokenPair, *Profile, error) {
	email := models.NormalizeEmail(id.Email)
	if !strings.Contains(email, "@") {
		return auth.TokenPair{}, nil, apperr.Validation("Enter a valid email address")
	}

	user, err := s.findOrCreateSocialUser(ctx, email, id)
	if err != nil {
		return auth.TokenPair{}, nil, err
	}
	if !user.IsActive {
		s.logger.Warn("Social login for inactive user", "user_id", user.ID)
		return auth.TokenPair{}, nil, apperr.Unauthenticated("No active account found with the given credentials")
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate tokens", "user_id", user.ID, "error", err)
		return auth.TokenPair{}, nil, apperr.Internal("Internal server error", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "method", "social")
	return pair, s.profile(user), nil
}

func (s *UserService) findOrCreateSocialUser(ctx context.Context, email string, id social.Identity) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("GetUserByEmail", err, "User not found")
	}

	for _, f := range []validate.Field{
		{Name: "first name", Value: id.FirstName},
		{Name: "last name", Value: id.LastName},
	} {
		if err := validate.MaxLen(f.Name, f.Value, nameMaxLen); err != nil {
			return nil, err
		}
	}

	user = models.NewUser(email, id.FirstName, id.LastName, auth.UnusablePassword)
	err = s.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrEmailExists) {
		// A concurrent sign-in created the account first.
		user, err = s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, storeError("GetUserByEmail", err, "User not found")
		}
		return user, nil
	}
	if err != nil {
		return nil, storeError("CreateUser", err, "User not found")
	}

	s.logger.Info("User registered", "user_id", user.ID, "method", "social")
	return user, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", tokenError(err)
	}
	if _, err := s.activeUser(ctx, claims.UserID); err != nil {
		return "", err
	}

	access, err := s.tokens.GenerateAccess(claims.UserID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", claims.UserID, "error", err)
		return "", apperr.Internal("Internal server error", err)
	}
	return access, nil
}

// Verify checks the signature and expiry of an access token.
func (s *UserService) Verify(accessToken string) error {
	if _, err := s.tokens.Validate(accessToken, auth.TokenTypeAccess); err != nil {
		return tokenError(err)
	}
	return nil
}

// Authenticate resolves an access token to an active user.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.Validate(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, tokenError(err)
	}
	return s.activeUser(ctx, claims.UserID)
}

// Me returns the profile of userID.
func (s *UserService) Me(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError("GetUserByID", err, "User not found")
	}
	return s.profile(user), nil
}

// DeleteAccount removes the user after re-checking their password. Owned
// rows go with the account; the avatar directory is removed afterwards.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, currentPassword string) error {
	if err := validate.Required(validate.Field{Name: "current password", Value: currentPassword}); err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storeError("GetUserByID", err, "User not found")
	}
	if err := s.authenticator.Verify(user, currentPassword); err != nil {
		return apperr.Validation("Invalid password")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return storeError("DeleteUser", err, "User not found")
	}
	if err := s.avatars.Store.RemoveUser(userID); err != nil {
		s.logger.Warn("Failed to remove avatar directory", "user_id", userID, "error", err)
	}

	s.logger.Info("User deleted", "user_id", userID)
	return nil
}

// AvatarMaxBytes is the largest accepted avatar upload.
func (s *UserService) AvatarMaxBytes() int64 {
	return s.avatars.MaxBytes
}

// UploadAvatar replaces the user's avatar with the uploaded image and returns
// its public URL. declaredSize is the size reported by the client; the body
// is also capped while reading. Nothing is written for oversized uploads.
func (s *UserService) UploadAvatar(ctx context.Context, userID, declaredSize int64, file io.Reader) (string, error) {
	limit := s.avatars.MaxBytes
	if declaredSize > limit {
		return "", apperr.PayloadTooLarge("File too large")
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", apperr.Internal("Could not read upload", err)
	}
	if int64(len(data)) > limit {
		return "", apperr.PayloadTooLarge("File too large")
	}

	ext, err := avatar.Detect(data)
	if err != nil {
		s.logger.Warn("Avatar rejected", "user_id", userID, "error", err)
		return "", &apperr.Error{Code: apperr.CodeInternal, Message: rootMessage(err), Err: err}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", storeError("GetUserByID", err, "User not found")
	}

	if user.HasAvatar() {
		if err := s.avatars.Store.Delete(*user.Avatar); err != nil {
			s.logger.Error("Failed to delete old avatar", "user_id", userID, "error", err)
			return "", apperr.Internal("Could not replace avatar", err)
		}
	}

	rel, err := s.avatars.Store.Save(userID, data, ext)
	if err != nil {
		s.logger.Error("Failed to save avatar", "user_id", userID, "error", err)
		return "", apperr.Internal("Could not save avatar", err)
	}
	if err := s.store.SetUserAvatar(ctx, userID, &rel); err != nil {
		if delErr := s.avatars.Store.Delete(rel); delErr != nil {
			s.logger.Warn("Failed to clean up avatar", "path", rel, "error", delErr)
		}
		return "", storeError("SetUserAvatar", err, "User not found")
	}

	s.logger.Info("Avatar uploaded", "user_id", userID, "path", rel)
	return s.avatars.MediaURL + rel, nil
}

// DeleteAvatar removes the user's avatar file, prunes the empty directory and
// clears the stored path. A user without an avatar is a no-op.
func (s *UserService) DeleteAvatar(ctx context.Context, userID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storeError("GetUserByID", err, "User not found")
	}
	if !user.HasAvatar() {
		return nil
	}

	if err := s.avatars.Store.Delete(*user.Avatar); err != nil {
		s.logger.Error("Failed to delete avatar", "user_id", userID, "error", err)
		return apperr.Internal(err.Error(), err)
	}
	if err := s.store.SetUserAvatar(ctx, userID, nil); err != nil {
		return storeError("SetUserAvatar", err, "User not found")
	}

	s.logger.Info("Avatar deleted", "user_id", userID)
	return nil
}

func (s *UserService) activeUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthenticated("User not found")
	}
	if err != nil {
		return nil, storeError("GetUserByID", err, "User not found")
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("User is inactive")
	}
	return user, nil
}

func (s *UserService) profile(user *models.User) *Profile {
	p := &Profile{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if user.HasAvatar() {
		url := s.avatars.MediaURL + *user.Avatar
		p.Avatar = &url
	}
	return p
}

func tokenError(err error) error {
	if errors.Is(err, auth.ErrMissingToken) {
		return apperr.Unauthenticated("Authentication credentials were not provided")
	}
	return apperr.Unauthenticated("Token is invalid or expired")
}

// rootMessage returns the message of the innermost wrapped sentinel.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
