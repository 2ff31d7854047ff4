package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	id, user_id, date, check_in_time, check_out_time,
	overtime_start, overtime_end, working_hours, overtime_hours,
	status, reason, leave_type, linked_request_id, version,
	created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var rec attendance.Attendance
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.OvertimeStart, &rec.OvertimeEnd, &rec.WorkingHours, &rec.OvertimeHours,
		&rec.Status, &rec.Reason, &rec.LeaveType, &rec.LinkedRequestID, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	rec.ID = uuid.NewString()
	rec.Version = 1

	query := `
		INSERT INTO attendance_records (
			id, user_id, date, check_in_time, check_out_time,
			overtime_start, overtime_end, working_hours, overtime_hours,
			status, reason, leave_type, linked_request_id, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Date,
		rec.CheckInTime,
		rec.CheckOutTime,
		rec.OvertimeStart,
		rec.OvertimeEnd,
		rec.WorkingHours,
		rec.OvertimeHours,
		rec.Status,
		rec.Reason,
		rec.LeaveType,
		rec.LinkedRequestID,
		rec.Version,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE user_id = $1 AND date = $2 LIMIT 1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no record for that day yet
		}
		return nil, fmt.Errorf("failed to get attendance record by user and date: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository. The write is guarded by
// the version token: a stale writer touches zero rows and gets
// ErrConcurrentModification.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_in_time = $1,
			check_out_time = $2,
			overtime_start = $3,
			overtime_end = $4,
			working_hours = $5,
			overtime_hours = $6,
			status = $7,
			reason = $8,
			leave_type = $9,
			linked_request_id = $10,
			version = version + 1,
			updated_at = $11
		WHERE id = $12 AND version = $13
	`

	tag, err := q.Exec(ctx, query,
		rec.CheckInTime,
		rec.CheckOutTime,
		rec.OvertimeStart,
		rec.OvertimeEnd,
		rec.WorkingHours,
		rec.OvertimeHours,
		rec.Status,
		rec.Reason,
		rec.LeaveType,
		rec.LinkedRequestID,
		time.Now(),
		rec.ID,
		rec.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE id = $1)`, rec.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check attendance record existence: %w", err)
		}
		if !exists {
			return attendance.ErrAttendanceNotFound
		}
		return attendance.ErrConcurrentModification
	}

	return nil
}

// ListByUserAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteByLinkedRequest implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteByLinkedRequest(ctx context.Context, requestID string) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE linked_request_id = $1`, requestID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance records for request: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListFiltered implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListFiltered(ctx context.Context, filter attendance.AdminAttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	monthStart, err := time.Parse("2006-01", filter.YearMonth)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid year month: %w", err)
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	baseWhere := "a.date >= $1 AND a.date <= $2"
	args := []interface{}{monthStart, monthEnd}
	argIdx := 3

	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		baseWhere += fmt.Sprintf(" AND u.department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Keyword != nil && *filter.Keyword != "" {
		baseWhere += fmt.Sprintf(" AND u.name ILIKE $%d", argIdx)
		args = append(args, "%"+strings.TrimSpace(*filter.Keyword)+"%")
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			a.id, a.user_id, a.date, a.check_in_time, a.check_out_time,
			a.overtime_start, a.overtime_end, a.working_hours, a.overtime_hours,
			a.status, a.reason, a.leave_type, a.linked_request_id, a.version,
			a.created_at, a.updated_at,
			u.name AS user_name,
			d.name AS department_name
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE %s
		ORDER BY a.date DESC, u.name ASC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var rec attendance.Attendance
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
			&rec.OvertimeStart, &rec.OvertimeEnd, &rec.WorkingHours, &rec.OvertimeHours,
			&rec.Status, &rec.Reason, &rec.LeaveType, &rec.LinkedRequestID, &rec.Version,
			&rec.CreatedAt, &rec.UpdatedAt,
			&rec.UserName, &rec.DepartmentName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
