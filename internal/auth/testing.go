package auth

import "context"

// SetUserIDForTest puts a player ID on the context the same way Middleware
// does, so handler tests can skip token generation.
func SetUserIDForTest(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
