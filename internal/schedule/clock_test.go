package schedule

import "testing"

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:30", 0, true},
		{"09-30", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseClock(%q): expected error, got %d", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClock(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("parseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{570, "09:30"},
		{585, "09:45"},
		{1439, "23:59"},
	}

	for _, tt := range tests {
		if got := formatClock(tt.in); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatClockCarriesMinuteOverflow(t *testing.T) {
	// 09:45 + 30 minutes must carry into the hour.
	start, err := parseClock("09:45")
	if err != nil {
		t.Fatal(err)
	}
	if got := formatClock(start + 30); got != "10:15" {
		t.Fatalf("09:45 + 30m = %q, want 10:15", got)
	}
}

func TestOverlaps(t *testing.T) {
	at := func(s string) int {
		m, err := parseClock(s)
		if err != nil {
			t.Fatalf("parseClock(%q): %v", s, err)
		}
		return m
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical", "10:00", "10:30", "10:00", "10:30", true},
		{"partial overlap", "10:00", "10:30", "10:15", "10:45", true},
		{"containment", "09:00", "12:00", "10:00", "10:30", true},
		{"back to back before", "09:30", "10:00", "10:00", "10:30", false},
		{"back to back after", "10:00", "10:30", "09:30", "10:00", false},
		{"disjoint", "09:00", "09:30", "11:00", "11:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlaps(at(tt.aStart), at(tt.aEnd), at(tt.bStart), at(tt.bEnd))
			if got != tt.want {
				t.Fatalf("overlaps(%s-%s, %s-%s) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}
