package scheduler

import (
	"testing"
	"time"

	"lendlocal-backend/internal/config"
	"lendlocal-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers the overdue reminder job", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{OverdueReminders: "0 0 9 * * *"}}
		s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		require.NoError(t, err)

		from := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC), s.NextRun(from))
	})

	t.Run("Unparseable schedule", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{OverdueReminders: "every morning"}}
		_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		assert.Error(t, err)
	})

	t.Run("Start and stop", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{OverdueReminders: "0 0 9 * * *"}}
		s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		require.NoError(t, err)
		s.Start()
		s.Stop()
	})
}
