package leave

import (
	"testing"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBusinessDaysAfter(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
	}

	// Monday + 3 business days lands on Thursday
	assert.Equal(t, day(5), NextBusinessDaysAfter(day(2), 3))

	// Thursday + 3 business days crosses the weekend to Tuesday
	assert.Equal(t, day(10), NextBusinessDaysAfter(day(5), 3))

	// Saturday itself does not count; walk starts at Monday
	assert.Equal(t, day(11), NextBusinessDaysAfter(day(7), 3))
}

func TestAttendanceStatusMappingIsExhaustive(t *testing.T) {
	expected := map[LeaveType]attendance.Status{
		TypeAnnual:       attendance.StatusAnnualLeave,
		TypeSick:         attendance.StatusSickLeave,
		TypeHalfDayAM:    attendance.StatusHalfDayAM,
		TypeHalfDayPM:    attendance.StatusHalfDayPM,
		TypeEarlyLeave:   attendance.StatusEarlyLeave,
		TypeBusinessTrip: attendance.StatusBusinessTrip,
		TypeOfficial:     attendance.StatusOfficialLeave,
		TypeMarriage:     attendance.StatusSpecialLeave,
		TypeParental:     attendance.StatusSpecialLeave,
		TypeBereavement:  attendance.StatusSpecialLeave,
	}

	for _, leaveType := range AllLeaveTypes {
		status, ok := leaveType.AttendanceStatus()
		require.True(t, ok, "no attendance status for %s", leaveType)
		assert.Equal(t, expected[leaveType], status)
	}

	_, ok := LeaveType("SABBATICAL").AttendanceStatus()
	assert.False(t, ok)
}
