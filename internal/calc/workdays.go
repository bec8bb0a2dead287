package calc

import (
	"math"
	"time"
)

const (
	// minPatternSample is the minimum number of treatments required before
	// a weekday pattern can be inferred.
	minPatternSample = 5
	// detectionThreshold marks a weekday as working when treatments occur
	// on at least half of its occurrences in the window.
	detectionThreshold = 0.5
	// confidenceFloor is the minimum detection confidence required before
	// the detected pattern overrides the manual one.
	confidenceFloor = 60
)

// WeekdayPattern maps each weekday to its observed treatment frequency
// (0..1) over the detection window.
type WeekdayPattern map[time.Weekday]float64

// DetectedPattern is the result of analysing historical treatment dates.
type DetectedPattern struct {
	Pattern    WeekdayPattern `json:"pattern"`
	Confidence int            `json:"confidence"` // 0-100
	SampleSize int            `json:"sample_size"`
	DetectedAt time.Time      `json:"detected_at"`
}

// WorkingSet converts the frequency pattern into a working-day set using the
// majority threshold.
func (d DetectedPattern) WorkingSet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		set[wd] = d.Pattern[wd] >= detectionThreshold
	}
	return set
}

// DetectWorkingDays infers which weekdays the clinic operates on from
// treatment dates inside the lookback window ending at now. Returns nil when
// there are fewer than minPatternSample treatments in the window.
//
// Confidence combines sample size (60%) with pattern clarity (40%): a clinic
// that always works Monday-Friday and never weekends scores higher than one
// with scattered activity.
func DetectWorkingDays(dates []time.Time, lookbackDays int, now time.Time) *DetectedPattern {
	if lookbackDays <= 0 {
		lookbackDays = 60
	}
	cutoff := now.AddDate(0, 0, -lookbackDays)

	var recent []time.Time
	for _, d := range dates {
		if !d.Before(cutoff) && !d.After(now) {
			recent = append(recent, d)
		}
	}
	if len(recent) < minPatternSample {
		return nil
	}

	// Occurrences of each weekday in the window, and treatment hits per
	// weekday. A weekday's frequency is hits over occurrences.
	occurrences := make(map[time.Weekday]int, 7)
	for d := cutoff; !d.After(now); d = d.AddDate(0, 0, 1) {
		occurrences[d.Weekday()]++
	}

	hits := make(map[time.Weekday]int, 7)
	seen := make(map[string]bool, len(recent))
	for _, d := range recent {
		day := d.Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true
		hits[d.Weekday()]++
	}

	pattern := make(WeekdayPattern, 7)
	minFreq, maxFreq := math.MaxFloat64, 0.0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		var freq float64
		if occurrences[wd] > 0 {
			freq = float64(hits[wd]) / float64(occurrences[wd])
		}
		if freq > 1 {
			freq = 1
		}
		pattern[wd] = freq
		if freq < minFreq {
			minFreq = freq
		}
		if freq > maxFreq {
			maxFreq = freq
		}
	}

	sampleScore := math.Min(100, float64(len(recent))/30*100)
	clarityScore := (maxFreq - minFreq) * 100
	confidence := int(math.Round(sampleScore*0.6 + clarityScore*0.4))

	return &DetectedPattern{
		Pattern:    pattern,
		Confidence: confidence,
		SampleSize: len(recent),
		DetectedAt: now,
	}
}

// EffectiveWorkingSet chooses between the detected pattern and the manual
// configuration: detection wins only when enabled and confident enough.
func EffectiveWorkingSet(manual map[time.Weekday]bool, detected *DetectedPattern, useHistorical bool) map[time.Weekday]bool {
	if useHistorical && detected != nil && detected.Confidence >= confidenceFloor {
		return detected.WorkingSet()
	}
	return manual
}

// DefaultWorkingSet is Monday through Saturday.
func DefaultWorkingSet() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
		time.Saturday:  true,
		time.Sunday:    false,
	}
}

// WorkingDaysInRange counts calendar and working days between from and to
// inclusive.
func WorkingDaysInRange(from, to time.Time, working map[time.Weekday]bool) (total, workingDays int) {
	from = truncateDay(from)
	to = truncateDay(to)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		total++
		if working[d.Weekday()] {
			workingDays++
		}
	}
	return total, workingDays
}

// EstimateMonthlyWorkingDays approximates working days per month from the
// weekly pattern, using 4.33 weeks per month.
func EstimateMonthlyWorkingDays(working map[time.Weekday]bool) int {
	perWeek := 0
	for _, on := range working {
		if on {
			perWeek++
		}
	}
	return int(math.Round(float64(perWeek) * 4.33))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
