package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records.
// Update performs a compare-and-swap on Version and returns
// ErrConcurrentModification when the stored version moved on.
type AttendanceRepository interface {
	// Create inserts a new record. The unique (user_id, date) constraint
	// surfaces as ErrRecordExists.
	Create(ctx context.Context, record Attendance) (Attendance, error)

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate retrieves the record for one user on one date.
	// Returns (nil, nil) when no record exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// Update writes every mutable column guarded by the version token
	Update(ctx context.Context, record Attendance) error

	// ListByUserAndRange retrieves a user's records within [start, end], ordered by date
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]Attendance, error)

	// DeleteByLinkedRequest removes every record materialized by a leave
	// request and returns how many were removed
	DeleteByLinkedRequest(ctx context.Context, requestID string) (int64, error)

	// ListFiltered retrieves the admin projection with directory names joined in
	ListFiltered(ctx context.Context, filter AdminAttendanceFilter) ([]Attendance, int64, error)
}
