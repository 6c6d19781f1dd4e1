package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("08:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 8 * * *", spec)

	spec, err = buildDailySpec("23:59")
	require.NoError(t, err)
	assert.Equal(t, "0 59 23 * * *", spec)

	for _, bad := range []string{"8am", "24:00", "12:60", "12", ""} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, "spec %q", bad)
	}
}

func TestScheduleDailyRejectsBadTime(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	_, err := s.ScheduleDaily("nope", func() {})
	assert.Error(t, err)
}
