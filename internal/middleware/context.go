package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmynk/homebase/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated *models.User.
	UserKey contextKey = "user"
	// requestInfoKey holds the per-request *requestInfo.
	requestInfoKey contextKey = "request_info"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// requestInfo is shared by the whole middleware chain of one request so that
// outer middleware can see what inner middleware learned (e.g. the user).
type requestInfo struct {
	ID     string
	UserID int64
}

func withRequestInfo(ctx context.Context, id string) (context.Context, *requestInfo) {
	if id == "" {
		id = uuid.NewString()
	}
	info := &requestInfo{ID: id}
	return context.WithValue(ctx, requestInfoKey, info), info
}

func getRequestInfo(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// GetRequestID returns the request ID, or "" outside the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	if info := getRequestInfo(ctx); info != nil {
		return info.ID
	}
	return ""
}

// GetUser returns the authenticated user, or nil.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// GetUserID extracts the user ID from the context.
// Returns 0 if not found.
func GetUserID(ctx context.Context) int64 {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return 0
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if info := getRequestInfo(ctx); info != nil {
		info.UserID = user.ID
	}
	return context.WithValue(ctx, UserKey, user)
}
