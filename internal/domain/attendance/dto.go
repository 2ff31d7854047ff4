package attendance

import (
	"github.com/hrplatform/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type AttendanceResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserName        *string  `json:"user_name,omitempty"`
	DepartmentName  *string  `json:"department_name,omitempty"`
	Date            string   `json:"date"`
	CheckInTime     *string  `json:"check_in_time"`
	CheckOutTime    *string  `json:"check_out_time"`
	OvertimeStart   *string  `json:"overtime_start,omitempty"`
	OvertimeEnd     *string  `json:"overtime_end,omitempty"`
	WorkingHours    *float64 `json:"working_hours"`
	OvertimeHours   *float64 `json:"overtime_hours"`
	Status          string   `json:"status"`
	Reason          *string  `json:"reason,omitempty"`
	LeaveType       *string  `json:"leave_type,omitempty"`
	LinkedRequestID *string  `json:"linked_request_id,omitempty"`
}

// MonthlyStatisticsResponse reports a value for every status; unobserved
// statuses stay at zero. VacationDays combines half-day (0.5) and full-day
// (1.0) leave and business-trip records.
type MonthlyStatisticsResponse struct {
	YearMonth string `json:"year_month"`

	PresentCount       int `json:"present_count"`
	LateCount          int `json:"late_count"`
	EarlyLeaveCount    int `json:"early_leave_count"`
	OvertimeCount      int `json:"overtime_count"`
	AbsentCount        int `json:"absent_count"`
	HalfDayAMCount     int `json:"half_day_am_count"`
	HalfDayPMCount     int `json:"half_day_pm_count"`
	BusinessTripCount  int `json:"business_trip_count"`
	AnnualLeaveCount   int `json:"annual_leave_count"`
	SickLeaveCount     int `json:"sick_leave_count"`
	OfficialLeaveCount int `json:"official_leave_count"`
	SpecialLeaveCount  int `json:"special_leave_count"`

	VacationDays float64 `json:"vacation_days"`
}

// ChartPoint is one day in a chart series.
type ChartPoint struct {
	Date          string   `json:"date"`
	Status        string   `json:"status"`
	WorkingHours  *float64 `json:"working_hours"`
	OvertimeHours *float64 `json:"overtime_hours"`
}

type OvertimeReasonRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (r *OvertimeReasonRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AdminAttendanceFilter narrows the admin attendance projection.
type AdminAttendanceFilter struct {
	YearMonth    string
	DepartmentID *string
	UserID       *string
	Keyword      *string
	Status       *string
	Page         int
	Limit        int
}

func (f *AdminAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidYearMonth(f.YearMonth); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "year_month",
			Message: "year_month must be in YYYY-MM format",
		})
	}

	if f.Status != nil && *f.Status != "" {
		valid := false
		for _, s := range AllStatuses {
			if string(s) == *f.Status {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "unknown attendance status",
			})
		}
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateAttendanceRequest lets an admin fix wrong clock data on a record.
type UpdateAttendanceRequest struct {
	ID           string  `json:"-"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       *string `json:"status"`
	Reason       *string `json:"reason"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Status != nil && *r.Status != "" {
		valid := false
		for _, s := range AllStatuses {
			if string(s) == *r.Status {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "unknown attendance status",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
