package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		text   string
		format string
		want   Duration
	}{
		{"00:00", FormatHHMM, 0},
		{"07:59", FormatHHMM, 7*3600 + 59*60},
		{"08:00", FormatHHMM, 28800},
		{" 01:30 ", FormatHHMM, 5400},
		{"12:00", FormatHHMM, 43200},
		{"07:59:00", FormatHHMMSS, 28740},
		{"00:01:05", FormatHHMMSS, 65},
	}
	for _, tt := range tests {
		got, err := FromString(tt.text, tt.format)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestFromStringRejectsMalformed(t *testing.T) {
	for _, text := range []string{"", "1", "aa:bb", "01:60", "01:00:00", "-1:00", "01:+5", "01::"} {
		_, err := FromString(text, FormatHHMM)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Expected ParseError for %q, got %v", text, err)
			continue
		}
		assert.Equal(t, FormatHHMM, perr.Format)
	}

	_, err := FromString("01:00", "mm")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	d := Seconds(28800)
	assert.Equal(t, "08:00", d.Format(FormatHHMM))
	assert.Equal(t, "08:00:00", d.String())

	d = Seconds(28740 + 45)
	assert.Equal(t, "07:59", d.Format(FormatHHMM), "seconds are truncated")
	assert.Equal(t, "07:59:45", d.Format(FormatHHMMSS))

	assert.Equal(t, "10:00:00", Seconds(36000).String(), "hours past the ceiling still render")
}

func TestAddSecondsIsUncapped(t *testing.T) {
	d := Seconds(28740).AddSeconds(120)
	assert.Equal(t, int64(28860), d.Seconds())
	assert.Equal(t, Zero(), Zero().AddSeconds(0))
}

func TestStdConversion(t *testing.T) {
	assert.Equal(t, 90*time.Second, Seconds(90).Std())
	assert.Equal(t, Seconds(90), FromStd(90*time.Second+400*time.Millisecond))
}
