package repository

import (
	"context"
	"errors"
	"time"

	"intervue-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store persists chat turns and session lifecycle records. Two
// implementations exist: Postgres (DATABASE_URL) and a file-backed SQLite
// fallback for local development.
type Store interface {
	// SaveConversation inserts one completed turn. Never called for a
	// failed upstream exchange.
	SaveConversation(ctx context.Context, c *models.Conversation) error

	// TouchSession creates the session row on the first turn and
	// increments its question count on every turn.
	TouchSession(ctx context.Context, sessionID, userAgent, ipAddress string) error

	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)

	// EndSession stamps end_time. Only invoked administratively; the chat
	// path never closes sessions.
	EndSession(ctx context.Context, sessionID string) error

	// DailyAnalytics derives the per-date aggregate from conversation rows.
	DailyAnalytics(ctx context.Context, date time.Time) (*models.Analytics, error)

	Close()
}
