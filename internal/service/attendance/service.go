package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	directory.UserRepository

	now func() time.Time
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func atHour(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	if _, err := a.UserRepository.GetByID(ctx, userID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	today := attendance.DayOf(now)

	rec, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance record: %w", err)
	}

	if rec != nil && rec.CheckInTime != nil {
		switch rec.Status {
		case attendance.StatusPresent, attendance.StatusLate, attendance.StatusOvertime:
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
	}

	// A day already carrying a leave status keeps it; the gate alone decides
	// whether a clock event is compatible with that status, even outside the
	// normal check-in window.
	if rec != nil && rec.Status.IsLeaveStatus() {
		if !attendance.CanCheckIn(rec.Status, now) {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidStateForCheckIn
		}
		if rec.CheckInTime != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}

		checkIn := now
		rec.CheckInTime = &checkIn
		if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		return mapAttendanceToResponse(*rec), nil
	}

	deadline := atHour(today, attendance.CheckInDeadlineHour, 0)
	if now.After(deadline) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckInWindowClosed
	}

	status := attendance.StatusPresent
	if now.After(atHour(today, attendance.WorkStartHour, 0)) {
		status = attendance.StatusLate
	}

	checkIn := now
	if rec == nil {
		created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
			UserID:      userID,
			Date:        today,
			CheckInTime: &checkIn,
			Status:      status,
		})
		if err != nil {
			// lost the creation race against another check-in
			if err == attendance.ErrRecordExists {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
			}
			return attendance.AttendanceResponse{}, err
		}
		return mapAttendanceToResponse(created), nil
	}

	rec.CheckInTime = &checkIn
	rec.Status = status
	if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return mapAttendanceToResponse(*rec), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	now := a.now()
	today := attendance.DayOf(now)

	rec, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance record: %w", err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoCheckInRecord
	}
	if rec.CheckOutTime != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if rec.CheckInTime == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}

	checkOut := now
	workingHours := attendance.HoursBetween(*rec.CheckInTime, now) - attendance.LunchDeductionHours
	if workingHours < 0 {
		workingHours = 0
	}

	rec.CheckOutTime = &checkOut
	rec.WorkingHours = &workingHours

	// Check-outs within the 10-minute grace window after 18:00 are not
	// overtime; half-day-PM users never accrue it.
	overtimeThreshold := atHour(today, attendance.OvertimeStartHour, attendance.OvertimeGraceMinutes)
	if now.After(overtimeThreshold) && rec.Status != attendance.StatusHalfDayPM {
		overtimeStart := atHour(today, attendance.OvertimeStartHour, 0)
		overtimeHours := attendance.HoursBetween(overtimeStart, now)

		rec.Status = attendance.StatusOvertime
		rec.OvertimeStart = &overtimeStart
		rec.OvertimeEnd = &checkOut
		rec.OvertimeHours = &overtimeHours
	}

	if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(*rec), nil
}

// GetDaily implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDaily(ctx context.Context, userID string, date string) (attendance.AttendanceResponse, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		}
	}
	day, _ := time.ParseInLocation("2006-01-02", date, a.now().Location())

	rec, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	return mapAttendanceToResponse(*rec), nil
}

// GetMonthlyStatistics implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlyStatistics(ctx context.Context, userID string, yearMonth string) (attendance.MonthlyStatisticsResponse, error) {
	if _, ok := validator.IsValidYearMonth(yearMonth); !ok {
		return attendance.MonthlyStatisticsResponse{}, validator.ValidationErrors{
			{Field: "year_month", Message: "year_month must be in YYYY-MM format"},
		}
	}
	monthStart, _ := time.ParseInLocation("2006-01", yearMonth, a.now().Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	records, err := a.AttendanceRepository.ListByUserAndRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return attendance.MonthlyStatisticsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	stats := attendance.MonthlyStatisticsResponse{YearMonth: yearMonth}

	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			stats.PresentCount++
		case attendance.StatusLate:
			stats.LateCount++
		case attendance.StatusEarlyLeave:
			stats.EarlyLeaveCount++
		case attendance.StatusOvertime:
			stats.OvertimeCount++
		case attendance.StatusAbsent:
			stats.AbsentCount++
		case attendance.StatusHalfDayAM:
			stats.HalfDayAMCount++
			stats.VacationDays += 0.5
		case attendance.StatusHalfDayPM:
			stats.HalfDayPMCount++
			stats.VacationDays += 0.5
		case attendance.StatusBusinessTrip:
			stats.BusinessTripCount++
			stats.VacationDays += 1.0
		case attendance.StatusAnnualLeave:
			stats.AnnualLeaveCount++
			stats.VacationDays += 1.0
		case attendance.StatusSickLeave:
			stats.SickLeaveCount++
			stats.VacationDays += 1.0
		case attendance.StatusOfficialLeave:
			stats.OfficialLeaveCount++
			stats.VacationDays += 1.0
		case attendance.StatusSpecialLeave:
			stats.SpecialLeaveCount++
			stats.VacationDays += 1.0
		}
	}

	return stats, nil
}

// GetChartSeries implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetChartSeries(ctx context.Context, userID string, startDate, endDate string) ([]attendance.ChartPoint, error) {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidDate(startDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(endDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	loc := a.now().Location()
	start, _ := time.ParseInLocation("2006-01-02", startDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", endDate, loc)
	if end.Before(start) {
		return nil, attendance.ErrInvalidRange
	}

	records, err := a.AttendanceRepository.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	points := make([]attendance.ChartPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, attendance.ChartPoint{
			Date:          rec.Date.Format("2006-01-02"),
			Status:        string(rec.Status),
			WorkingHours:  rec.WorkingHours,
			OvertimeHours: rec.OvertimeHours,
		})
	}

	return points, nil
}

// ReportOvertime implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ReportOvertime(ctx context.Context, userID string, req attendance.OvertimeReasonRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, a.now().Location())
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	today := attendance.DayOf(a.now())
	if day.After(today) {
		return attendance.AttendanceResponse{}, attendance.ErrFutureDate
	}

	rec, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec == nil || rec.Status != attendance.StatusOvertime {
		return attendance.AttendanceResponse{}, attendance.ErrNotOvertimeDay
	}
	if rec.OvertimeHours == nil || *rec.OvertimeHours <= 0 {
		return attendance.AttendanceResponse{}, attendance.ErrNoOvertimeHours
	}

	reason := req.Reason
	rec.Reason = &reason
	if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(*rec), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AdminAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.ListFiltered(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapAttendanceToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}, nil
}

// UpdateAttendance implements attendance.AttendanceService.
// This allows admins to fix attendance data like wrong clock times.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.CheckInTime != nil && *req.CheckInTime != "" {
		t, err := parseClockOnDate(rec.Date, *req.CheckInTime)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		rec.CheckInTime = &t
	}

	if req.CheckOutTime != nil && *req.CheckOutTime != "" {
		t, err := parseClockOnDate(rec.Date, *req.CheckOutTime)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		rec.CheckOutTime = &t
	}

	if req.Status != nil && *req.Status != "" {
		rec.Status = attendance.Status(*req.Status)
	}

	if req.Reason != nil {
		rec.Reason = req.Reason
	}

	// Recalculate work hours when both clock times are present
	if rec.CheckInTime != nil && rec.CheckOutTime != nil {
		workingHours := attendance.HoursBetween(*rec.CheckInTime, *rec.CheckOutTime) - attendance.LunchDeductionHours
		if workingHours < 0 {
			workingHours = 0
		}
		rec.WorkingHours = &workingHours
	}

	if err := a.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get updated attendance record: %w", err)
	}

	return mapAttendanceToResponse(updated), nil
}

// parseClockOnDate accepts either a full timestamp or a bare time of day,
// anchoring the latter to the record's date.
func parseClockOnDate(date time.Time, value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, date.Location()); err == nil {
		return t, nil
	}
	clock, err := time.Parse("15:04:05", value)
	if err != nil {
		clock, err = time.Parse("15:04", value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location()), nil
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(rec attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:              rec.ID,
		UserID:          rec.UserID,
		UserName:        rec.UserName,
		DepartmentName:  rec.DepartmentName,
		Date:            rec.Date.Format("2006-01-02"),
		CheckInTime:     timePtrToString(rec.CheckInTime),
		CheckOutTime:    timePtrToString(rec.CheckOutTime),
		OvertimeStart:   timePtrToString(rec.OvertimeStart),
		OvertimeEnd:     timePtrToString(rec.OvertimeEnd),
		WorkingHours:    rec.WorkingHours,
		OvertimeHours:   rec.OvertimeHours,
		Status:          string(rec.Status),
		Reason:          rec.Reason,
		LeaveType:       rec.LeaveType,
		LinkedRequestID: rec.LinkedRequestID,
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		now:                  time.Now,
	}
}

// NewAttendanceServiceWithClock is used by tests that need a fixed clock.
func NewAttendanceServiceWithClock(
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
	now func() time.Time,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		now:                  now,
	}
}
