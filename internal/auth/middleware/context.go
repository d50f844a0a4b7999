package auth

import "context"

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// WithUserID stamps the authenticated learner (or admin) id on the request
// context. JWTMiddleware sets it from the token's sub claim; session handlers
// read it back as the owner for every ownership check.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

// UserIDFromContext returns the authenticated user id, or "" when the request
// never passed JWTMiddleware.
func UserIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
