package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", New(2025, time.January, 15), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"invalid-date", Date{}, true},
		{"2025-13-01", Date{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.err {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		on     Date
		months int
		want   Date
	}{
		{New(2024, 1, 1), 1, New(2024, 2, 1)},
		{New(2024, 1, 1), -1, New(2023, 12, 1)},
		{New(2024, 3, 1), -36, New(2021, 3, 1)},
		{New(2024, 12, 1), 13, New(2026, 1, 1)},
	}
	for _, tt := range tests {
		if got := tt.on.AddMonths(tt.months); got != tt.want {
			t.Errorf("%v.AddMonths(%d) = %v, want %v", tt.on, tt.months, got, tt.want)
		}
	}
}

func TestStartOfMonth(t *testing.T) {
	if got, want := New(2024, 2, 29).StartOfMonth(), New(2024, 2, 1); got != want {
		t.Errorf("StartOfMonth() = %v, want %v", got, want)
	}
}

func TestOf(t *testing.T) {
	loc := time.FixedZone("TST", 8*3600)
	got := Of(time.Date(2024, 5, 1, 23, 59, 0, 0, loc))
	if want := New(2024, 5, 1); got != want {
		t.Errorf("Of() = %v, want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2024, 1, 31), New(2024, 2, 1)
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Errorf("Compare(%v, %v) inconsistent", a, b)
	}
	if !(Date{}).Before(a) {
		t.Errorf("null date must sort first")
	}
}

func TestJSON(t *testing.T) {
	d := New(2023, 1, 1)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2023-01-01"` {
		t.Errorf("Marshal() = %s, want %q", data, "2023-01-01")
	}
	var got Date
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}
	if err := json.Unmarshal([]byte(`""`), &got); err != nil || !got.IsZero() {
		t.Errorf("Unmarshal(\"\") = %v, %v, want null date", got, err)
	}
}
