package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceRepo struct {
	records map[string]*attendance.Attendance
	nextID  int

	// failUsers makes writes for these users fail, to test isolation
	failUsers map[string]bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		records:   make(map[string]*attendance.Attendance),
		failUsers: make(map[string]bool),
	}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
	if f.failUsers[rec.UserID] {
		return attendance.Attendance{}, errors.New("storage unavailable")
	}
	for _, existing := range f.records {
		if existing.UserID == rec.UserID && existing.Date.Equal(rec.Date) {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
	}
	f.nextID++
	rec.ID = fmt.Sprintf("rec-%d", f.nextID)
	rec.Version = 1
	stored := rec
	f.records[rec.ID] = &stored
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	rec, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *rec, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Date.Equal(date) {
			found := *rec
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, rec attendance.Attendance) error {
	stored, ok := f.records[rec.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if stored.Version != rec.Version {
		return attendance.ErrConcurrentModification
	}
	rec.Version++
	*stored = rec
	return nil
}

func (f *fakeAttendanceRepo) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.UserID == userID && !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) DeleteByLinkedRequest(ctx context.Context, requestID string) (int64, error) {
	return 0, nil
}

func (f *fakeAttendanceRepo) ListFiltered(ctx context.Context, filter attendance.AdminAttendanceFilter) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

type fakeUserRepo struct {
	users []directory.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (directory.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return directory.User{}, directory.ErrUserNotFound
}

func (f *fakeUserRepo) ListActive(ctx context.Context) ([]directory.User, error) {
	return f.users, nil
}

func activeUsers(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{}
	for _, id := range ids {
		repo.users = append(repo.users, directory.User{ID: id, Name: "User " + id, Active: true})
	}
	return repo
}

// runAt fixes the sweep clock; Tuesday 2025-06-10 00:05 targets Monday 06-09.
func runAt(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 0, 5, 0, 0, time.UTC)
	}
}

func TestMarkAbsentees_CreatesAbsentRecords(t *testing.T) {
	repo := newFakeAttendanceRepo()
	jobs := NewAttendanceJobsWithClock(repo, activeUsers("u1", "u2"), runAt(2025, 6, 10))

	require.NoError(t, jobs.MarkAbsentees(context.Background()))

	target := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	for _, userID := range []string{"u1", "u2"} {
		rec, err := repo.GetByUserAndDate(context.Background(), userID, target)
		require.NoError(t, err)
		require.NotNil(t, rec, "expected an absent record for %s", userID)
		assert.Equal(t, attendance.StatusAbsent, rec.Status)
		require.NotNil(t, rec.WorkingHours)
		assert.Equal(t, 0.0, *rec.WorkingHours)
	}
}

func TestMarkAbsentees_LeavesExistingStatusAlone(t *testing.T) {
	repo := newFakeAttendanceRepo()
	ctx := context.Background()
	target := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	checkIn := target.Add(9 * time.Hour)
	hours := 7.0
	_, err := repo.Create(ctx, attendance.Attendance{
		UserID:       "u1",
		Date:         target,
		CheckInTime:  &checkIn,
		Status:       attendance.StatusPresent,
		WorkingHours: &hours,
	})
	require.NoError(t, err)

	jobs := NewAttendanceJobsWithClock(repo, activeUsers("u1"), runAt(2025, 6, 10))
	require.NoError(t, jobs.MarkAbsentees(ctx))

	rec, err := repo.GetByUserAndDate(ctx, "u1", target)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.InDelta(t, 7.0, *rec.WorkingHours, 0.001)
}

func TestMarkAbsentees_WeekendTargetSkipped(t *testing.T) {
	repo := newFakeAttendanceRepo()
	// Sunday run targets Saturday
	jobs := NewAttendanceJobsWithClock(repo, activeUsers("u1"), runAt(2025, 6, 8))

	require.NoError(t, jobs.MarkAbsentees(context.Background()))
	assert.Empty(t, repo.records)
}

func TestMarkAbsentees_OneFailureDoesNotAbortBatch(t *testing.T) {
	repo := newFakeAttendanceRepo()
	repo.failUsers["u2"] = true
	jobs := NewAttendanceJobsWithClock(repo, activeUsers("u1", "u2", "u3"), runAt(2025, 6, 10))

	require.NoError(t, jobs.MarkAbsentees(context.Background()))

	target := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	for _, userID := range []string{"u1", "u3"} {
		rec, err := repo.GetByUserAndDate(context.Background(), userID, target)
		require.NoError(t, err)
		require.NotNil(t, rec, "expected an absent record for %s", userID)
	}
}

func TestMarkAbsentees_Idempotent(t *testing.T) {
	repo := newFakeAttendanceRepo()
	jobs := NewAttendanceJobsWithClock(repo, activeUsers("u1"), runAt(2025, 6, 10))
	ctx := context.Background()

	require.NoError(t, jobs.MarkAbsentees(ctx))
	require.NoError(t, jobs.MarkAbsentees(ctx))

	assert.Len(t, repo.records, 1)
}
