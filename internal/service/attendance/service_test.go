package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-1"

// fakeAttendanceRepo is an in-memory AttendanceRepository with the same
// uniqueness and versioning behavior as the real one.
type fakeAttendanceRepo struct {
	records map[string]*attendance.Attendance
	nextID  int

	// afterRead runs once a read has produced its result, letting tests
	// interleave a competing write between a read and its follow-up write.
	afterRead func()
}

func (f *fakeAttendanceRepo) fireAfterRead() {
	if f.afterRead != nil {
		f.afterRead()
	}
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Attendance)}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, rec attendance.Attendance) (attendance.Attendance, error) {
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
	defer f.fireAfterRead()
	rec, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *rec, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	defer f.fireAfterRead()
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
	var deleted int64
	for id, rec := range f.records {
		if rec.LinkedRequestID != nil && *rec.LinkedRequestID == requestID {
			delete(f.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeAttendanceRepo) ListFiltered(ctx context.Context, filter attendance.AdminAttendanceFilter) ([]attendance.Attendance, int64, error) {
	monthStart, err := time.Parse("2006-01", filter.YearMonth)
	if err != nil {
		return nil, 0, err
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.Date.Before(monthStart) || rec.Date.After(monthEnd) {
			continue
		}
		if filter.UserID != nil && *filter.UserID != "" && rec.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(rec.Status) != *filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	users map[string]directory.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	users := make(map[string]directory.User)
	for _, id := range ids {
		users[id] = directory.User{ID: id, Name: "User " + id, Role: directory.RoleEmployee, Active: true}
	}
	return &fakeUserRepo{users: users}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (directory.User, error) {
	user, ok := f.users[id]
	if !ok {
		return directory.User{}, directory.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ListActive(ctx context.Context) ([]directory.User, error) {
	var out []directory.User
	for _, user := range f.users {
		if user.Active {
			out = append(out, user)
		}
	}
	return out, nil
}

// clockAt returns a fixed clock on Monday 2025-06-09.
func clockAt(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 9, hour, minute, 0, 0, time.UTC)
	}
}

func newTestService(repo *fakeAttendanceRepo, users *fakeUserRepo, now func() time.Time) attendance.AttendanceService {
	return NewAttendanceServiceWithClock(repo, users, now)
}

func TestCheckIn_BeforeNineIsPresent(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(8, 45))

	result, err := svc.CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), result.Status)
	require.NotNil(t, result.CheckInTime)
}

func TestCheckIn_AfterNineIsLate(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(9, 1))

	result, err := svc.CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), result.Status)
}

func TestCheckIn_TwiceFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(8, 30))

	_, err := svc.CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_AfterDeadlineFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(18, 1))

	_, err := svc.CheckIn(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrCheckInWindowClosed)
}

func TestCheckIn_BusinessTripAfterDeadlineAllowed(t *testing.T) {
	repo := newFakeAttendanceRepo()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID: testUserID, Date: day, Status: attendance.StatusBusinessTrip,
	})
	require.NoError(t, err)

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(18, 30))
	result, err := svc.CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusBusinessTrip), result.Status)
	require.NotNil(t, result.CheckInTime)
}

func TestCheckIn_CreationRaceMapsToAlreadyCheckedIn(t *testing.T) {
	repo := newFakeAttendanceRepo()
	ctx := context.Background()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	// a second check-in for the same user lands right after the empty read
	repo.afterRead = func() {
		repo.afterRead = nil
		checkIn := day.Add(8 * time.Hour)
		_, err := repo.Create(ctx, attendance.Attendance{
			UserID:      testUserID,
			Date:        day,
			CheckInTime: &checkIn,
			Status:      attendance.StatusPresent,
		})
		require.NoError(t, err)
	}

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(8, 30))
	_, err := svc.CheckIn(ctx, testUserID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_UnknownUserFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(), clockAt(8, 30))

	_, err := svc.CheckIn(context.Background(), "nobody")
	assert.ErrorIs(t, err, directory.ErrUserNotFound)
}

func TestCheckIn_OnFullDayLeaveFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID: testUserID,
		Date:   day,
		Status: attendance.StatusAnnualLeave,
	})
	require.NoError(t, err)

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(8, 30))
	_, err = svc.CheckIn(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrInvalidStateForCheckIn)
}

func TestCheckIn_HalfDayAMGate(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	t.Run("before noon is rejected", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		_, err := repo.Create(context.Background(), attendance.Attendance{
			UserID: testUserID, Date: day, Status: attendance.StatusHalfDayAM,
		})
		require.NoError(t, err)

		svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(11, 59))
		_, err = svc.CheckIn(context.Background(), testUserID)
		assert.ErrorIs(t, err, attendance.ErrInvalidStateForCheckIn)
	})

	t.Run("after noon keeps the half-day status", func(t *testing.T) {
		repo := newFakeAttendanceRepo()
		_, err := repo.Create(context.Background(), attendance.Attendance{
			UserID: testUserID, Date: day, Status: attendance.StatusHalfDayAM,
		})
		require.NoError(t, err)

		svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(13, 0))
		result, err := svc.CheckIn(context.Background(), testUserID)
		require.NoError(t, err)
		assert.Equal(t, string(attendance.StatusHalfDayAM), result.Status)
		require.NotNil(t, result.CheckInTime)
	})
}

func TestCheckIn_HalfDayPMBeforeNoonAllowed(t *testing.T) {
	repo := newFakeAttendanceRepo()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID: testUserID, Date: day, Status: attendance.StatusHalfDayPM,
	})
	require.NoError(t, err)

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(8, 50))
	result, err := svc.CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusHalfDayPM), result.Status)
}

func TestCheckOut_DeductsLunch(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(9, 0)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	result, err := newTestService(repo, users, clockAt(17, 0)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, result.WorkingHours)
	assert.InDelta(t, 7.0, *result.WorkingHours, 0.001)
	assert.Equal(t, string(attendance.StatusPresent), result.Status)
	assert.Nil(t, result.OvertimeHours)
}

func TestCheckOut_ShortDayClampsToZero(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(9, 0)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	result, err := newTestService(repo, users, clockAt(9, 30)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, result.WorkingHours)
	assert.Equal(t, 0.0, *result.WorkingHours)
}

func TestCheckOut_WithinGraceIsNotOvertime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(8, 30)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	result, err := newTestService(repo, users, clockAt(18, 10)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), result.Status)
	assert.Nil(t, result.OvertimeHours)
}

func TestCheckOut_PastGraceIsOvertime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(8, 30)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	result, err := newTestService(repo, users, clockAt(19, 30)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOvertime), result.Status)
	require.NotNil(t, result.OvertimeHours)
	// overtime counts from 18:00, not from the grace boundary
	assert.InDelta(t, 1.5, *result.OvertimeHours, 0.001)
	require.NotNil(t, result.OvertimeStart)
	assert.Equal(t, "2025-06-09 18:00:00", *result.OvertimeStart)
}

func TestCheckOut_HalfDayPMNeverOvertime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID: testUserID, Date: day, Status: attendance.StatusHalfDayPM,
	})
	require.NoError(t, err)

	_, err = newTestService(repo, users, clockAt(8, 30)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)

	result, err := newTestService(repo, users, clockAt(19, 0)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusHalfDayPM), result.Status)
	assert.Nil(t, result.OvertimeHours)
}

func TestCheckOut_WithoutRecordFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(17, 0))

	_, err := svc.CheckOut(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrNoCheckInRecord)
}

func TestCheckOut_TwiceFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(9, 0)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	_, err = newTestService(repo, users, clockAt(17, 0)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)

	_, err = newTestService(repo, users, clockAt(17, 30)).CheckOut(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_WithoutCheckInFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), attendance.Attendance{
		UserID: testUserID, Date: day, Status: attendance.StatusAbsent,
	})
	require.NoError(t, err)

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(17, 0))
	_, err = svc.CheckOut(context.Background(), testUserID)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestReportOvertime(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)

	_, err := newTestService(repo, users, clockAt(8, 30)).CheckIn(context.Background(), testUserID)
	require.NoError(t, err)
	_, err = newTestService(repo, users, clockAt(20, 0)).CheckOut(context.Background(), testUserID)
	require.NoError(t, err)

	svc := newTestService(repo, users, clockAt(21, 0))

	t.Run("records the reason", func(t *testing.T) {
		result, err := svc.ReportOvertime(context.Background(), testUserID, attendance.OvertimeReasonRequest{
			Date:   "2025-06-09",
			Reason: "release deployment",
		})
		require.NoError(t, err)
		require.NotNil(t, result.Reason)
		assert.Equal(t, "release deployment", *result.Reason)
	})

	t.Run("future date is rejected", func(t *testing.T) {
		_, err := svc.ReportOvertime(context.Background(), testUserID, attendance.OvertimeReasonRequest{
			Date:   "2025-06-10",
			Reason: "time travel",
		})
		assert.ErrorIs(t, err, attendance.ErrFutureDate)
	})

	t.Run("day without overtime is rejected", func(t *testing.T) {
		_, err := svc.ReportOvertime(context.Background(), testUserID, attendance.OvertimeReasonRequest{
			Date:   "2025-06-06",
			Reason: "nothing happened",
		})
		assert.ErrorIs(t, err, attendance.ErrNotOvertimeDay)
	})
}

func TestGetDaily_MissingRecord(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(10, 0))

	_, err := svc.GetDaily(context.Background(), testUserID, "2025-06-09")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestGetMonthlyStatistics(t *testing.T) {
	repo := newFakeAttendanceRepo()
	ctx := context.Background()

	seed := []struct {
		day    int
		status attendance.Status
	}{
		{2, attendance.StatusPresent},
		{3, attendance.StatusLate},
		{4, attendance.StatusOvertime},
		{5, attendance.StatusAbsent},
		{6, attendance.StatusHalfDayAM},
		{9, attendance.StatusHalfDayPM},
		{10, attendance.StatusAnnualLeave},
		{11, attendance.StatusBusinessTrip},
		{12, attendance.StatusSpecialLeave},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, attendance.Attendance{
			UserID: testUserID,
			Date:   time.Date(2025, 6, s.day, 0, 0, 0, 0, time.UTC),
			Status: s.status,
		})
		require.NoError(t, err)
	}

	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(10, 0))
	stats, err := svc.GetMonthlyStatistics(ctx, testUserID, "2025-06")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PresentCount)
	assert.Equal(t, 1, stats.LateCount)
	assert.Equal(t, 1, stats.OvertimeCount)
	assert.Equal(t, 1, stats.AbsentCount)
	assert.Equal(t, 1, stats.HalfDayAMCount)
	assert.Equal(t, 1, stats.HalfDayPMCount)
	assert.Equal(t, 1, stats.AnnualLeaveCount)
	assert.Equal(t, 1, stats.BusinessTripCount)
	assert.Equal(t, 1, stats.SpecialLeaveCount)
	assert.Equal(t, 0, stats.EarlyLeaveCount)
	assert.Equal(t, 0, stats.SickLeaveCount)
	assert.Equal(t, 0, stats.OfficialLeaveCount)

	// two half-days at 0.5 plus three full leave days
	assert.InDelta(t, 4.0, stats.VacationDays, 0.001)
}

func TestGetChartSeries_InvalidRange(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newTestService(repo, newFakeUserRepo(testUserID), clockAt(10, 0))

	_, err := svc.GetChartSeries(context.Background(), testUserID, "2025-06-10", "2025-06-01")
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)
}

func TestUpdateAttendance_RecomputesWorkingHours(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)
	ctx := context.Background()

	_, err := newTestService(repo, users, clockAt(9, 0)).CheckIn(ctx, testUserID)
	require.NoError(t, err)
	result, err := newTestService(repo, users, clockAt(17, 0)).CheckOut(ctx, testUserID)
	require.NoError(t, err)

	checkIn := "08:00"
	svc := newTestService(repo, users, clockAt(17, 30))
	updated, err := svc.UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{
		ID:          result.ID,
		CheckInTime: &checkIn,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.WorkingHours)
	assert.InDelta(t, 8.0, *updated.WorkingHours, 0.001)
}

func TestUpdateAttendance_ConcurrentEditFails(t *testing.T) {
	repo := newFakeAttendanceRepo()
	users := newFakeUserRepo(testUserID)
	ctx := context.Background()

	result, err := newTestService(repo, users, clockAt(9, 0)).CheckIn(ctx, testUserID)
	require.NoError(t, err)

	// a competing edit lands between the read and the versioned write
	repo.afterRead = func() {
		repo.afterRead = nil
		repo.records[result.ID].Version++
	}

	status := string(attendance.StatusPresent)
	_, err = newTestService(repo, users, clockAt(17, 0)).UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{
		ID:     result.ID,
		Status: &status,
	})
	assert.ErrorIs(t, err, attendance.ErrConcurrentModification)
}
