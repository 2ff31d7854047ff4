package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
)

// AttendanceJobs holds the scheduled attendance maintenance work.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	userRepo       directory.UserRepository

	now func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

// NewAttendanceJobsWithClock is used by tests that need a fixed clock.
func NewAttendanceJobsWithClock(
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
	now func() time.Time,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		now:            now,
	}
}

// RegisterJobs adds the attendance jobs to the scheduler. The sweep runs
// shortly after midnight so the previous day is fully closed before it is
// examined.
func (j *AttendanceJobs) RegisterJobs(s *Scheduler) {
	s.AddDailyJob("mark_absentees", 0, 5, j.MarkAbsentees)
}

// MarkAbsentees backfills ABSENT records for the previous calendar day. Days
// that fall on a weekend are not swept. A user whose record already carries a
// status is left untouched, so the sweep is idempotent.
func (j *AttendanceJobs) MarkAbsentees(ctx context.Context) error {
	target := attendance.DayOf(j.now()).AddDate(0, 0, -1)
	if target.Weekday() == time.Saturday || target.Weekday() == time.Sunday {
		slog.Debug("Absentee sweep skipped, target day is a weekend", "date", target.Format("2006-01-02"))
		return nil
	}

	users, err := j.userRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	var marked, failed int
	for _, user := range users {
		if err := j.markAbsentee(ctx, user.ID, target); err != nil {
			// one user's failure must not abort the batch
			slog.Error("Failed to mark absentee",
				"user_id", user.ID, "date", target.Format("2006-01-02"), "error", err)
			failed++
			continue
		}
		marked++
	}

	slog.Info("Absentee sweep completed",
		"date", target.Format("2006-01-02"), "users", len(users), "failed", failed)
	return nil
}

func (j *AttendanceJobs) markAbsentee(ctx context.Context, userID string, day time.Time) error {
	rec, err := j.attendanceRepo.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return err
	}

	zero := 0.0

	if rec == nil {
		_, err := j.attendanceRepo.Create(ctx, attendance.Attendance{
			UserID:       userID,
			Date:         day,
			Status:       attendance.StatusAbsent,
			WorkingHours: &zero,
		})
		// a concurrent sweep already created the record
		if err == attendance.ErrRecordExists {
			return nil
		}
		return err
	}

	if rec.Status != "" || rec.CheckInTime != nil {
		return nil
	}

	rec.Status = attendance.StatusAbsent
	rec.WorkingHours = &zero
	return j.attendanceRepo.Update(ctx, *rec)
}
