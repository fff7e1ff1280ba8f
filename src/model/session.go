// backend/src/model/session.go
package model

import (
	"database/sql"
	"errors"
	"time"
)

type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the refresh window of the session has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func CreateSession(db *sql.DB, session *Session) error {
	query := `
	INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	session.CreatedAt = time.Now()
	res, err := db.Exec(query,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.UserAgent,
		session.ClientIP,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return err
	}
	session.ID, err = res.LastInsertId()
	return err
}

const sessionColumns = `id, user_id, token, refresh_token, user_agent, client_ip, expires_at, created_at`

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var expiresAt, createdAt string
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.UserAgent, &s.ClientIP, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	s.ExpiresAt = parseTime(expiresAt)
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	return scanSession(db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token))
}

// GetSessionByRefreshToken returns the session owning refreshToken.
// Expired sessions are treated as absent.
func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = ?`, refreshToken))
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

// RotateSession replaces both tokens of an existing session.
func RotateSession(db *sql.DB, session *Session, newToken, newRefreshToken string, expiresAt time.Time) error {
	res, err := db.Exec(`UPDATE sessions SET token = ?, refresh_token = ?, expires_at = ? WHERE id = ?`,
		newToken, newRefreshToken, formatTime(expiresAt), session.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	session.Token = newToken
	session.RefreshToken = newRefreshToken
	session.ExpiresAt = expiresAt
	return nil
}

func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func DeleteSessionByRefreshToken(db *sql.DB, refreshToken string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	return err
}

// DeleteSessionsForUser removes every session of userID, logging the user out everywhere.
func DeleteSessionsForUser(db *sql.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions whose refresh window has passed.
func DeleteExpiredSessions(db *sql.DB, now time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
