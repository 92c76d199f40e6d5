package performance

import "time"

// IntervalDays describes the observed spacing of a time series: the average
// and the modal gap between consecutive timestamps, in days. The modal gap is
// the per-period day count; the average derives the annualization factor.
type IntervalDays struct {
	Average float64 `json:"average"`
	Mode    float64 `json:"mode"`
}

// AnnualPeriods returns the number of periods per year implied by the
// average gap.
func (d IntervalDays) AnnualPeriods() float64 {
	return 365.0 / d.Average
}

// IntervalDaysFrom infers IntervalDays from a series of timestamps. Gaps are
// rounded to 4 decimal places for the mode count; ties are broken towards the
// smaller gap. Fewer than two timestamps yield a one-day default.
func IntervalDaysFrom(timestamps []time.Time) IntervalDays {
	if len(timestamps) < 2 {
		return IntervalDays{Average: 1, Mode: 1}
	}

	gaps := make([]float64, 0, len(timestamps)-1)
	totalSeconds := 0.0
	for i := 1; i < len(timestamps); i++ {
		seconds := timestamps[i].Sub(timestamps[i-1]).Seconds()
		gaps = append(gaps, seconds/86400.0)
		totalSeconds += seconds
	}

	average := totalSeconds / (float64(len(gaps)) * 86400.0)

	counts := make(map[int64]int)
	maxCount := 0
	var modeKey int64
	for _, gap := range gaps {
		key := int64(gap * 10000.0)
		counts[key]++
		if counts[key] > maxCount || (counts[key] == maxCount && key < modeKey) {
			maxCount = counts[key]
			modeKey = key
		}
	}

	return IntervalDays{
		Average: average,
		Mode:    float64(modeKey) / 10000.0,
	}
}
