package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeetingStatus string

const (
	StatusScheduled   MeetingStatus = "scheduled"
	StatusCompleted   MeetingStatus = "completed"
	StatusCancelled   MeetingStatus = "cancelled"
	StatusRescheduled MeetingStatus = "rescheduled"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Meeting represents a meeting record. Code is a derived share reference
// filled in by the API layer, it is never persisted.
type Meeting struct {
	ID        int64         `json:"id"`
	Code      string        `json:"code,omitempty"`
	Seller    string        `json:"seller"`
	Date      time.Time     `json:"date"`
	Time      string        `json:"time"`
	Status    MeetingStatus `json:"status"`
	Agenda    string        `json:"agenda"`
	Location  *string       `json:"location"`
	Priority  Priority      `json:"priority"`
	Deadline  *time.Time    `json:"deadline"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MeetingUpdate is a partial update, nil fields are left untouched.
type MeetingUpdate struct {
	Date     *time.Time
	Time     *string
	Agenda   *string
	Location *string
	Priority *Priority
	Status   *MeetingStatus
	Deadline *time.Time
}

type MeetingFilter struct {
	Status *MeetingStatus
	Limit  int
	Offset int
}

type MeetingsStore struct {
	db *pgxpool.Pool
}

func (s *MeetingsStore) Create(ctx context.Context, meeting *Meeting) error {
	query := `
	  INSERT INTO meetings (seller, date, time, status, agenda, location, priority, deadline)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	  RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		meeting.Seller,
		meeting.Date,
		meeting.Time,
		meeting.Status,
		meeting.Agenda,
		meeting.Location,
		meeting.Priority,
		meeting.Deadline,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)
}

const meetingColumns = `id, seller, date, time, status, agenda, location, priority, deadline, created_at, updated_at`

func scanMeeting(row pgx.Row, m *Meeting) error {
	return row.Scan(
		&m.ID,
		&m.Seller,
		&m.Date,
		&m.Time,
		&m.Status,
		&m.Agenda,
		&m.Location,
		&m.Priority,
		&m.Deadline,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (s *MeetingsStore) GetByID(ctx context.Context, meetingID int64) (*Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE id = $1`, meetingColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	meeting := &Meeting{}
	if err := scanMeeting(s.db.QueryRow(ctx, query, meetingID), meeting); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// Cancel flips a scheduled meeting to cancelled. The status precondition is
// part of the UPDATE itself, a concurrent cancel sees zero rows.
func (s *MeetingsStore) Cancel(ctx context.Context, meetingID int64) (*Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := fmt.Sprintf(`
	  UPDATE meetings
	  SET status = $1, updated_at = NOW()
	  WHERE id = $2 AND status = $3
	  RETURNING %s`, meetingColumns)

	meeting := &Meeting{}
	err := scanMeeting(s.db.QueryRow(ctx, query, StatusCancelled, meetingID, StatusScheduled), meeting)
	if err == nil {
		return meeting, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// No row matched: either the meeting does not exist or it is no longer
	// scheduled. Tell the two apart for the caller.
	current, getErr := s.GetByID(ctx, meetingID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status != StatusScheduled {
		return nil, ErrInvalidTransition
	}
	return nil, ErrNotFound
}

// Update applies a partial update. Status is written as-is, there is no
// transition check on this path.
func (s *MeetingsStore) Update(ctx context.Context, meetingID int64, upd MeetingUpdate) (*Meeting, error) {
	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	set := func(field string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}

	if upd.Date != nil {
		set("date", *upd.Date)
	}
	if upd.Time != nil {
		set("time", *upd.Time)
	}
	if upd.Agenda != nil {
		set("agenda", *upd.Agenda)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Priority != nil {
		set("priority", *upd.Priority)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Deadline != nil {
		set("deadline", *upd.Deadline)
	}

	if len(setClauses) == 0 {
		return s.GetByID(ctx, meetingID)
	}

	args = append(args, meetingID)
	query := fmt.Sprintf("UPDATE meetings SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argCounter, meetingColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	meeting := &Meeting{}
	if err := scanMeeting(s.db.QueryRow(ctx, query, args...), meeting); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// Delete removes the meeting and returns the record as it existed right
// before removal, the broadcast payload needs it.
func (s *MeetingsStore) Delete(ctx context.Context, meetingID int64) (*Meeting, error) {
	query := fmt.Sprintf(`DELETE FROM meetings WHERE id = $1 RETURNING %s`, meetingColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	meeting := &Meeting{}
	if err := scanMeeting(s.db.QueryRow(ctx, query, meetingID), meeting); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// List returns meetings ordered by ascending date, optionally narrowed to an
// exact status, plus the total count for pagination metadata.
func (s *MeetingsStore) List(ctx context.Context, filter MeetingFilter) ([]Meeting, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *filter.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM meetings %s", where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
	  SELECT %s FROM meetings %s
	  ORDER BY date ASC, id ASC
	  LIMIT $%d OFFSET $%d`, meetingColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		if err := scanMeeting(rows, &m); err != nil {
			return nil, 0, err
		}
		meetings = append(meetings, m)
	}
	return meetings, total, rows.Err()
}
