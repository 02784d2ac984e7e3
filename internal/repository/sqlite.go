package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"intervue-backend/internal/models"
)

// SQLiteStore is the file-backed fallback used when no DATABASE_URL is
// configured. Same contract as PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	query := `
		INSERT INTO conversations (session_id, user_message, ai_response, timestamp, response_time_seconds)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`

	return s.db.QueryRowContext(ctx, query,
		c.SessionID, c.UserMessage, c.AIResponse, c.Timestamp, c.ResponseTimeSeconds,
	).Scan(&c.ID)
}

func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID, userAgent, ipAddress string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interview_sessions (session_id, start_time, total_questions, user_agent, ip_address)
		VALUES (?, CURRENT_TIMESTAMP, 1, ?, ?)
		ON CONFLICT (session_id) DO UPDATE
		SET total_questions = total_questions + 1
	`, sessionID, userAgent, ipAddress)
	return err
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var (
		sess      models.InterviewSession
		endTime   sql.NullTime
		userAgent sql.NullString
		ipAddress sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, start_time, end_time, total_questions, user_agent, ip_address
		FROM interview_sessions
		WHERE session_id = ?
	`, sessionID).Scan(
		&sess.ID, &sess.SessionID, &sess.StartTime, &endTime,
		&sess.TotalQuestions, &userAgent, &ipAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		sess.EndTime = &endTime.Time
	}
	sess.UserAgent = userAgent.String
	sess.IPAddress = ipAddress.String

	return &sess, nil
}

func (s *SQLiteStore) EndSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_sessions
		SET end_time = COALESCE(end_time, CURRENT_TIMESTAMP)
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DailyAnalytics(ctx context.Context, date time.Time) (*models.Analytics, error) {
	day := date.UTC().Format("2006-01-02")

	stats := models.Analytics{Date: day}
	var avg sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT session_id), COUNT(*), AVG(response_time_seconds)
		FROM conversations
		WHERE DATE(timestamp) = ?
	`, day).Scan(&stats.TotalSessions, &stats.TotalQuestions, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AvgResponseTime = &avg.Float64
	}

	if stats.TotalQuestions > 0 {
		var question string
		err = s.db.QueryRowContext(ctx, `
			SELECT user_message
			FROM conversations
			WHERE DATE(timestamp) = ?
			GROUP BY user_message
			ORDER BY COUNT(*) DESC, user_message
			LIMIT 1
		`, day).Scan(&question)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			stats.MostCommonQuestion = &question
		}
	}

	return &stats, nil
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}
