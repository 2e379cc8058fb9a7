package logfields

import (
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"TickID", KeyTickID, "t-1", TickID("t-1")},
		{"Daypart", KeyDaypart, "evening", Daypart("evening")},
		{"Image", KeyImage, "/w/a.jpg", Image("/w/a.jpg")},
		{"Source", KeySource, "hour", Source("hour")},
		{"Outcome", KeyOutcome, "applied", Outcome("applied")},
		{"Command", KeyCommand, "feh a.jpg", Command("feh a.jpg")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"JobName", KeyJobName, "status", JobName("status")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric and duration helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Hour(23); v.Key != KeyHour || v.Value.Int64() != 23 {
		t.Fatalf("Hour mismatch: %v", v)
	}
	if v := Candidates(4); v.Key != KeyCandidates || v.Value.Int64() != 4 {
		t.Fatalf("Candidates mismatch: %v", v)
	}
	if v := Interval(30 * time.Minute); v.Key != KeyInterval || v.Value.Duration() != 30*time.Minute {
		t.Fatalf("Interval mismatch: %v", v)
	}
	if v := Wait(time.Second); v.Key != KeyWait {
		t.Fatalf("Wait key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
