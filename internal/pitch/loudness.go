package pitch

import "math"

// loudnessTracker keeps the calibrated level of the last loudnessHistorySize hops.
type loudnessTracker struct {
	history [loudnessHistorySize]float64
	slot    int
}

func newLoudnessTracker() *loudnessTracker {
	l := &loudnessTracker{}
	l.reset()
	return l
}

// reset fills the history with the level of silence.
func (l *loudnessTracker) reset() {
	for i := range l.history {
		l.history[i] = dbOffset
	}
	l.slot = 0
}

// push advances to the next slot and records db there.
func (l *loudnessTracker) push(db float64) {
	l.slot++
	if l.slot == loudnessHistorySize {
		l.slot = 0
	}
	l.history[l.slot] = db
}

// amplitude converts the current slot from decibels to a linear amplitude.
func (l *loudnessTracker) amplitude() float64 {
	return math.Pow(10, l.history[l.slot]/20)
}

func (l *loudnessTracker) mean() float64 {
	var sum float64
	for _, db := range l.history {
		sum += db
	}
	return sum / loudnessHistorySize
}

// frameLevel returns the frame's level in dB, floored at zero, and its total loudness.
func frameLevel(totalPower float64, windowSize int) (db, loudness float64) {
	db = dbScale * math.Log(totalPower/float64(windowSize))
	if db < 0 {
		db = 0
	}
	return db, math.Sqrt(math.Sqrt(totalPower))
}
