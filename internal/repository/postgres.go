package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"intervue-backend/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	query := `
		INSERT INTO conversations (session_id, user_message, ai_response, timestamp, response_time_seconds)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return s.pool.QueryRow(ctx, query,
		c.SessionID, c.UserMessage, c.AIResponse, c.Timestamp, c.ResponseTimeSeconds,
	).Scan(&c.ID)
}

func (s *PostgresStore) TouchSession(ctx context.Context, sessionID, userAgent, ipAddress string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interview_sessions (session_id, total_questions, user_agent, ip_address)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET total_questions = interview_sessions.total_questions + 1
	`, sessionID, userAgent, ipAddress)
	return err
}

func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var (
		sess      models.InterviewSession
		endTime   sql.NullTime
		userAgent sql.NullString
		ipAddress sql.NullString
	)

	err := s.pool.QueryRow(ctx, `
		SELECT id, session_id, start_time, end_time, total_questions, user_agent, ip_address
		FROM interview_sessions
		WHERE session_id = $1
	`, sessionID).Scan(
		&sess.ID, &sess.SessionID, &sess.StartTime, &endTime,
		&sess.TotalQuestions, &userAgent, &ipAddress,
	)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (s *PostgresStore) EndSession(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET end_time = COALESCE(end_time, NOW())
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DailyAnalytics(ctx context.Context, date time.Time) (*models.Analytics, error) {
	day := date.UTC().Format("2006-01-02")

	stats := models.Analytics{Date: day}
	var avg sql.NullFloat64

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT session_id), COUNT(*), AVG(response_time_seconds)
		FROM conversations
		WHERE timestamp::date = $1::date
	`, day).Scan(&stats.TotalSessions, &stats.TotalQuestions, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AvgResponseTime = &avg.Float64
	}

	if stats.TotalQuestions > 0 {
		var question string
		err = s.pool.QueryRow(ctx, `
			SELECT user_message
			FROM conversations
			WHERE timestamp::date = $1::date
			GROUP BY user_message
			ORDER BY COUNT(*) DESC, user_message
			LIMIT 1
		`, day).Scan(&question)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			stats.MostCommonQuestion = &question
		}
	}

	return &stats, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
