package calc

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// weekdaysBetween returns every date of the given weekdays in [from, to].
func weekdaysBetween(from, to time.Time, weekdays ...time.Weekday) []time.Time {
	want := make(map[time.Weekday]bool)
	for _, wd := range weekdays {
		want[wd] = true
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if want[d.Weekday()] {
			out = append(out, d)
		}
	}
	return out
}

func TestDetectWorkingDaysWeekdayClinic(t *testing.T) {
	now := day("2025-03-31") // Monday
	dates := weekdaysBetween(day("2025-02-01"), now,
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

	detected := DetectWorkingDays(dates, 60, now)
	if detected == nil {
		t.Fatal("expected a detected pattern")
	}

	set := detected.WorkingSet()
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		if !set[wd] {
			t.Errorf("expected %v to be a working day", wd)
		}
	}
	if set[time.Saturday] || set[time.Sunday] {
		t.Error("weekend should not be detected as working")
	}

	// Full sample with a perfectly clean pattern should be highly confident.
	if detected.Confidence < confidenceFloor {
		t.Errorf("expected confidence >= %d, got %d", confidenceFloor, detected.Confidence)
	}
}

func TestDetectWorkingDaysInsufficientSample(t *testing.T) {
	now := day("2025-03-31")
	dates := []time.Time{day("2025-03-10"), day("2025-03-11"), day("2025-03-12")}
	if got := DetectWorkingDays(dates, 60, now); got != nil {
		t.Errorf("expected nil below minimum sample, got %+v", got)
	}
}

func TestDetectWorkingDaysIgnoresOutOfWindow(t *testing.T) {
	now := day("2025-03-31")
	// All treatments predate the 60-day window.
	dates := weekdaysBetween(day("2024-01-01"), day("2024-02-28"), time.Monday, time.Wednesday)
	if got := DetectWorkingDays(dates, 60, now); got != nil {
		t.Errorf("expected nil when all data is outside the window, got %+v", got)
	}
}

func TestEffectiveWorkingSet(t *testing.T) {
	manual := DefaultWorkingSet()
	confident := &DetectedPattern{
		Pattern:    WeekdayPattern{time.Monday: 1, time.Tuesday: 1},
		Confidence: 85,
	}
	weak := &DetectedPattern{
		Pattern:    WeekdayPattern{time.Monday: 1},
		Confidence: 40,
	}

	got := EffectiveWorkingSet(manual, confident, true)
	if !got[time.Monday] || got[time.Saturday] {
		t.Error("confident detection should override the manual pattern")
	}

	got = EffectiveWorkingSet(manual, weak, true)
	if !got[time.Saturday] {
		t.Error("low-confidence detection should fall back to manual pattern")
	}

	got = EffectiveWorkingSet(manual, confident, false)
	if !got[time.Saturday] {
		t.Error("detection disabled should use manual pattern")
	}
}

func TestWorkingDaysInRange(t *testing.T) {
	// March 2025 has 31 days, 5 Saturdays and 5 Sundays.
	total, working := WorkingDaysInRange(day("2025-03-01"), day("2025-03-31"), DefaultWorkingSet())
	if total != 31 {
		t.Errorf("expected 31 total days, got %d", total)
	}
	if working != 26 {
		t.Errorf("expected 26 working days, got %d", working)
	}
}

func TestEstimateMonthlyWorkingDays(t *testing.T) {
	// Six working days per week, 4.33 weeks per month.
	if got := EstimateMonthlyWorkingDays(DefaultWorkingSet()); got != 26 {
		t.Errorf("expected 26, got %d", got)
	}

	fiveDay := map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
	if got := EstimateMonthlyWorkingDays(fiveDay); got != 22 {
		t.Errorf("expected 22, got %d", got)
	}
}
