package models

import "time"

// Conversation is one completed chat turn. Rows are written only after a
// successful upstream reply and are never updated or deleted afterwards.
type Conversation struct {
	ID                  int64     `json:"id"`
	SessionID           string    `json:"session_id"`
	UserMessage         string    `json:"user_message"`
	AIResponse          string    `json:"ai_response"`
	Timestamp           time.Time `json:"timestamp"`
	ResponseTimeSeconds *float64  `json:"response_time_seconds,omitempty"`
}

// InterviewSession tracks one browser session's lifecycle. Created on the
// first turn of a session; end_time is only ever set administratively.
type InterviewSession struct {
	ID             int64      `json:"id"`
	SessionID      string     `json:"session_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	TotalQuestions int        `json:"total_questions"`
	UserAgent      string     `json:"user_agent"`
	IPAddress      string     `json:"ip_address"`
}

// Analytics is a derived per-date aggregate over Conversation rows. It is
// computed on read, never written by the chat path.
type Analytics struct {
	Date               string   `json:"date"`
	TotalSessions      int      `json:"total_sessions"`
	TotalQuestions     int      `json:"total_questions"`
	AvgResponseTime    *float64 `json:"avg_response_time,omitempty"`
	MostCommonQuestion *string  `json:"most_common_question,omitempty"`
}
