package history

import (
	"testing"
	"time"
)

func TestLayoutParser(t *testing.T) {
	t.Parallel()

	p := NewDateParser(nil, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2008-jun-27 11:16:06", time.Date(2008, 6, 27, 11, 16, 6, 0, time.UTC)},
		{"2008-06-27 11:16:06", time.Date(2008, 6, 27, 11, 16, 6, 0, time.UTC)},
		{"Friday, June 27, 2008 11:16:06 AM", time.Date(2008, 6, 27, 11, 16, 6, 0, time.UTC)},
		{"6/27/2008 1:16:06 PM", time.Date(2008, 6, 27, 13, 16, 6, 0, time.UTC)},
		{"27.06.2008 11:16:06", time.Date(2008, 6, 27, 11, 16, 6, 0, time.UTC)},
		{"  2008-09-24 ", time.Date(2008, 9, 24, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := p.ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLayoutParser_ExtraLayoutsWin(t *testing.T) {
	t.Parallel()

	// Day-first locale: without the extra layout 02/03 would read as February 3rd.
	p := NewDateParser([]string{"02/01/2006 15:04:05"}, time.UTC)
	got, err := p.ParseDate("02/03/2009 08:00:00")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got.Month() != time.March || got.Day() != 2 {
		t.Errorf("ParseDate() = %v, want 2 March", got)
	}
}

func TestLayoutParser_Location(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	got, err := NewDateParser(nil, loc).ParseDate("2008-09-24 12:00:00")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if want := time.Date(2008, 9, 24, 11, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}
}

func TestLayoutParser_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := NewDateParser(nil, time.UTC).ParseDate("yesterday"); err == nil {
		t.Error("ParseDate(yesterday) = nil error, want error")
	}
}
