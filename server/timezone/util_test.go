package timezone

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantNil bool
		wantErr bool
	}{
		{
			name:    "UTC",
			tz:      "UTC",
			wantNil: false,
			wantErr: false,
		},
		{
			name:    "empty string defaults to UTC",
			tz:      "",
			wantNil: false,
			wantErr: false,
		},
		{
			name:    "Asia/Shanghai",
			tz:      "Asia/Shanghai",
			wantNil: false,
			wantErr: false,
		},
		{
			name:    "America/New_York",
			tz:      "America/New_York",
			wantNil: false,
			wantErr: false,
		},
		{
			name:    "invalid timezone",
			tz:      "Invalid/Timezone",
			wantNil: false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if (loc == nil) != tt.wantNil {
				t.Errorf("ParseTimezone() location = %v, wantNil %v", loc, tt.wantNil)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want bool
	}{
		{"UTC", "UTC", true},
		{"empty", "", true},
		{"Asia/Shanghai", "Asia/Shanghai", true},
		{"America/New_York", "America/New_York", true},
		{"invalid", "Invalid/Timezone", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTimezone(tt.tz); got != tt.want {
				t.Errorf("IsValidTimezone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	// 2025-01-21 14:30:00 UTC
	testTime := time.Date(2025, 1, 21, 14, 30, 0, 0, time.UTC)

	loc, _ := ParseTimezone("Asia/Shanghai")
	got := StartOfDay(testTime, loc)

	// Should be 2025-01-21 00:00:00 Asia/Shanghai
	// which is 2025-01-20 16:00:00 UTC
	want := time.Date(2025, 1, 20, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestEndOfDay(t *testing.T) {
	// 2025-01-21 14:30:00 UTC
	testTime := time.Date(2025, 1, 21, 14, 30, 0, 0, time.UTC)

	loc, _ := ParseTimezone("Asia/Shanghai")
	got := EndOfDay(testTime, loc)

	// Should be 2025-01-22 00:00:00 Asia/Shanghai
	// which is 2025-01-21 16:00:00 UTC
	want := time.Date(2025, 1, 21, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndOfDay() = %v, want %v", got, want)
	}
	if got.Location() != loc {
		t.Errorf("EndOfDay() location = %v, want %v", got.Location(), loc)
	}

	// 2024-03-10 is 23 hours long in New York
	ny, _ := ParseTimezone("America/New_York")
	dst := EndOfDay(time.Date(2024, 3, 10, 12, 0, 0, 0, ny), ny)
	if d := dst.Sub(StartOfDay(dst.Add(-time.Hour), ny)); d != 23*time.Hour {
		t.Errorf("EndOfDay() across DST spans %v, want 23h", d)
	}
}

func TestNowInTimezone(t *testing.T) {
	loc, _ := ParseTimezone("Asia/Shanghai")
	got := NowInTimezone(loc)

	// Check that the timezone is correctly set
	if got.Location() != loc {
		t.Errorf("NowInTimezone() location = %v, want %v", got.Location(), loc)
	}

	ref, err := ParseReference("", loc, nil)
	if err != nil {
		t.Fatalf("ParseReference() error = %v", err)
	}
	if ref.Location() != loc || time.Since(ref) > time.Minute {
		t.Errorf("ParseReference() without a clock = %v, want now in %v", ref, loc)
	}
}

func TestParseReference(t *testing.T) {
	loc, _ := ParseTimezone("America/New_York")
	fixed := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	tests := []struct {
		name    string
		ref     string
		want    time.Time
		wantErr bool
	}{
		{"empty means now", "", fixed, false},
		{"RFC 3339 keeps its offset", "2024-03-15T10:00:00Z", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), false},
		{"local datetime", "2024-03-15 10:00:00", time.Date(2024, 3, 15, 10, 0, 0, 0, loc), false},
		{"local minutes", "2024-03-15T10:30", time.Date(2024, 3, 15, 10, 30, 0, 0, loc), false},
		{"date only", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), false},
		{"garbage", "next tuesday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.ref, loc, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReference() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidReference) {
					t.Errorf("ParseReference() error = %v, want ErrInvalidReference", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseReference() = %v, want %v", got, tt.want)
			}
			if got.Location() != loc {
				t.Errorf("ParseReference() location = %v, want %v", got.Location(), loc)
			}
		})
	}
}
