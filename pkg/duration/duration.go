// Package duration holds the elapsed-time value stored on every task.
//
// A Duration is a plain count of seconds. It does not know about the per-task
// ceiling: arithmetic may produce a value above it and the ledger decides how
// to split the overflow.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// FormatHHMM is the layout persisted in the task file ("07:59").
	FormatHHMM = "hh:mm"
	// FormatHHMMSS is the layout used for display and logs ("07:59:30").
	FormatHHMMSS = "hh:mm:ss"
)

// Duration is a non-negative number of elapsed seconds.
type Duration int64

// ParseError reports a duration text that does not match the requested format.
type ParseError struct {
	Text   string
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid duration %q for format %s: %s", e.Text, e.Format, e.Reason)
}

func Zero() Duration { return 0 }

// Seconds builds a Duration from a raw second count.
func Seconds(n int64) Duration { return Duration(n) }

// FromStd truncates a time.Duration to whole seconds.
func FromStd(d time.Duration) Duration { return Duration(d / time.Second) }

// FromString parses text written in one of the FormatXXX layouts.
// Hours are unbounded, minutes and seconds must be in [0, 59].
func FromString(text, format string) (Duration, error) {
	var want int
	switch format {
	case FormatHHMM:
		want = 2
	case FormatHHMMSS:
		want = 3
	default:
		return 0, &ParseError{Text: text, Format: format, Reason: "unknown format"}
	}

	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != want {
		return 0, &ParseError{Text: text, Format: format, Reason: fmt.Sprintf("expected %d fields, got %d", want, len(parts))}
	}

	fields := make([]int64, want)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, "+-") {
			return 0, &ParseError{Text: text, Format: format, Reason: fmt.Sprintf("field %d is not a number", i+1)}
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, &ParseError{Text: text, Format: format, Reason: fmt.Sprintf("field %d is not a number", i+1)}
		}
		if i > 0 && n > 59 {
			return 0, &ParseError{Text: text, Format: format, Reason: fmt.Sprintf("field %d out of range", i+1)}
		}
		fields[i] = n
	}

	total := fields[0]*3600 + fields[1]*60
	if want == 3 {
		total += fields[2]
	}
	return Duration(total), nil
}

// Format renders d with one of the FormatXXX layouts. FormatHHMM drops the
// seconds, it does not round them.
func (d Duration) Format(format string) string {
	s := int64(d)
	sign := ""
	if s < 0 {
		sign = "-"
		s = -s
	}
	h, m, sec := s/3600, (s%3600)/60, s%60
	if format == FormatHHMM {
		return fmt.Sprintf("%s%02d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, sec)
}

func (d Duration) String() string { return d.Format(FormatHHMMSS) }

// AddSeconds returns d+n without any ceiling applied.
func (d Duration) AddSeconds(n int64) Duration { return d + Duration(n) }

func (d Duration) Seconds() int64 { return int64(d) }

// Std converts d to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) * time.Second }
