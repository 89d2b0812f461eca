package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "Nova Tech", s.Name)
	assert.Equal(t, "Asia/Kuala_Lumpur", s.Location().String())
	assert.Equal(t, 999, s.JobIDBase)
	assert.Equal(t, 12, s.PageSize)
	assert.Equal(t, 7*24*time.Hour, s.Retention.Pickup())
	assert.Equal(t, 60*24*time.Hour, s.Retention.Confiscation())
	assert.Equal(t, 3*24*time.Hour, s.Retention.FinalWarning())
	assert.Len(t, s.Terms, 4)

	// kuala lumpur is UTC+8 with no daylight saving
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, s.Location()).Zone()
	assert.Equal(t, 8*3600, offset)
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "shop.yml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("empty path", func(t *testing.T) {
		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		s, err := Load(write(t, "name: Fix It\ntimezone: Europe/London\nretention:\n  confiscation_days: 30\n"))
		require.NoError(t, err)
		assert.Equal(t, "Fix It", s.Name)
		assert.Equal(t, "Europe/London", s.Location().String())
		assert.Equal(t, 7, s.Retention.PickupDays)
		assert.Equal(t, 30, s.Retention.ConfiscationDays)
		assert.Equal(t, 3, s.Retention.FinalWarningDays)
		assert.Equal(t, 12, s.PageSize)
		assert.Len(t, s.Terms, 4)
	})

	t.Run("templates and terms", func(t *testing.T) {
		s, err := Load(write(t, "templates:\n  initial: 'ready {{.Job.ID}}'\nterms:\n  - no warranty\n"))
		require.NoError(t, err)
		assert.Equal(t, "ready {{.Job.ID}}", s.Templates.Initial)
		assert.Equal(t, []string{"no warranty"}, s.Terms)
	})

	tests := []struct {
		name string
		body string
		err  string
	}{
		{name: "unknown key", body: "nmae: typo\n", err: `unknown field "nmae"`},
		{name: "unknown nested key", body: "retention:\n  pickup: 3\n", err: `unknown field "retention.pickup"`},
		{name: "bad yaml", body: "name: [\n", err: "can't parse yaml"},
		{name: "bad timezone", body: "timezone: Mars/Olympus\n", err: "unknown timezone"},
		{name: "empty name", body: "name: '  '\n", err: "name is required"},
		{name: "page size", body: "page_size: 0\n", err: "page_size must be between 1 and 500"},
		{name: "pickup after confiscation", body: "retention:\n  pickup_days: 90\n", err: "exceeds confiscation window"},
		{name: "warning too long", body: "retention:\n  final_warning_days: 60\n", err: "final warning 60d"},
		{name: "job id base", body: "job_id_base: -1\n", err: "job_id_base must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/no/such/file.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't read config")
	})
}

func TestShop_LocationNotValidated(t *testing.T) {
	s := Shop{Timezone: "Asia/Tokyo"}
	assert.Equal(t, time.UTC, s.Location())
	require.NoError(t, (&Shop{Name: "x", Timezone: "", PageSize: 1, Retention: Retention{PickupDays: 1, ConfiscationDays: 2}}).Validate())
}
