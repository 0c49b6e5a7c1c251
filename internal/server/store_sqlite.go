package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

const enrollmentColumns = `id, hostname, user, environment, groups_json, public_key, enrolled_at, last_seen`

func (s *SQLiteStore) CreateEnrollment(rec *EnrollmentRecord) (string, error) {
	// Re-enrolling a known hostname returns the existing row untouched,
	// mirroring the inventory's first-write-wins rule.
	if existing, err := s.GetByHostname(rec.Hostname); err != nil {
		return "", err
	} else if existing != nil {
		return existing.ID, nil
	}

	id := uuid.NewString()
	now := time.Now().Unix()
	if rec.EnrolledAt != 0 {
		now = rec.EnrolledAt
	}
	groupsJSON, _ := json.Marshal(rec.Groups)

	_, err := s.DB.Exec(
		`INSERT INTO enrollments (`+enrollmentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Hostname, rec.User, rec.Environment, string(groupsJSON), rec.PublicKey, now, now,
	)
	return id, err
}

func (s *SQLiteStore) scanOne(row *sql.Row) (*EnrollmentRecord, error) {
	var rec EnrollmentRecord
	var groupsJSON string
	err := row.Scan(&rec.ID, &rec.Hostname, &rec.User, &rec.Environment, &groupsJSON, &rec.PublicKey, &rec.EnrolledAt, &rec.LastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	_ = json.Unmarshal([]byte(groupsJSON), &rec.Groups)
	return &rec, nil
}

func (s *SQLiteStore) GetByHostname(hostname string) (*EnrollmentRecord, error) {
	return s.scanOne(s.DB.QueryRow(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE hostname = ?`, hostname,
	))
}

func (s *SQLiteStore) GetByPubKey(publicKey string) (*EnrollmentRecord, error) {
	if publicKey == "" {
		return nil, nil
	}
	return s.scanOne(s.DB.QueryRow(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE public_key = ?`, publicKey,
	))
}

func (s *SQLiteStore) List() ([]*EnrollmentRecord, error) {
	rows, err := s.DB.Query(
		`SELECT ` + enrollmentColumns + ` FROM enrollments ORDER BY enrolled_at, hostname`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EnrollmentRecord
	for rows.Next() {
		var rec EnrollmentRecord
		var groupsJSON string
		if err := rows.Scan(&rec.ID, &rec.Hostname, &rec.User, &rec.Environment, &groupsJSON, &rec.PublicKey, &rec.EnrolledAt, &rec.LastSeen); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(groupsJSON), &rec.Groups)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) TouchLastSeen(hostname string, ts int64) error {
	_, err := s.DB.Exec(`UPDATE enrollments SET last_seen=? WHERE hostname=?`, ts, hostname)
	return err
}
