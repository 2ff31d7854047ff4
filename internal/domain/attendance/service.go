package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn records the user's arrival for today
	CheckIn(ctx context.Context, userID string) (AttendanceResponse, error)

	// CheckOut records the user's departure and derives working/overtime hours
	CheckOut(ctx context.Context, userID string) (AttendanceResponse, error)

	// GetDaily retrieves one user's record for a specific date
	GetDaily(ctx context.Context, userID string, date string) (AttendanceResponse, error)

	// GetMonthlyStatistics aggregates per-status counts over one month
	GetMonthlyStatistics(ctx context.Context, userID string, yearMonth string) (MonthlyStatisticsResponse, error)

	// GetChartSeries returns the per-day series within [start, end]
	GetChartSeries(ctx context.Context, userID string, startDate, endDate string) ([]ChartPoint, error)

	// ReportOvertime attaches a retroactive reason to an overtime day
	ReportOvertime(ctx context.Context, userID string, req OvertimeReasonRequest) (AttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin)
	ListAttendance(ctx context.Context, filter AdminAttendanceFilter) (ListAttendanceResponse, error)

	// UpdateAttendance fixes wrong data on a record (admin)
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
}
