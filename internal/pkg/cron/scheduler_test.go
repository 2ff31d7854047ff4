package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobNextRun(t *testing.T) {
	job := Job{Name: "mark_absentees", Hour: 0, Minute: 5}

	before := time.Date(2025, 6, 10, 0, 4, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 5, 0, 0, time.UTC), job.nextRun(before))

	// exactly at the scheduled time rolls over to tomorrow
	at := time.Date(2025, 6, 10, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 5, 0, 0, time.UTC), job.nextRun(at))
}

func TestRegisterJobs_RunOnceSweeps(t *testing.T) {
	repo := newFakeAttendanceRepo()
	s := NewScheduler()
	NewAttendanceJobsWithClock(repo, activeUsers("u1"), runAt(2025, 6, 10)).RegisterJobs(s)

	s.RunOnce(context.Background())

	target := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	rec, err := repo.GetByUserAndDate(context.Background(), "u1", target)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "mark_absentees", s.jobs[0].Name)
}
