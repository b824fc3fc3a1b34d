package domain

import (
	"context"
	"time"
)

// SessionCache backs the browser-facing local login. API clients use bearer
// tokens instead; both surfaces coexist.
type SessionCache interface {
	PostSession(ctx context.Context, sessionID, userID string, lifespan time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DelSession(ctx context.Context, sessionID string) error
}
