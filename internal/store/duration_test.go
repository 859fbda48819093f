package store

import "testing"

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 0m"},
		{90, "1h 30m"},
		{-5, "0m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.mins); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}

func TestParseDurationLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"1h 30m", 90, true},
		{"2h", 120, true},
		{"1h30m", 90, true},
		{"45m", 45, true},
		{" 5m ", 5, true},
		{"", 0, false},
		{"half an hour", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDurationLabel(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDurationLabel(%q) = %d, %v; want %d, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, mins := range []int{1, 25, 59, 60, 61, 600} {
		got, ok := ParseDurationLabel(FormatMinutes(mins))
		if !ok || got != mins {
			t.Errorf("round trip %d: got %d, %v", mins, got, ok)
		}
	}
}
