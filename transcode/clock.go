package transcode

import (
	"fmt"

	"github.com/TesterNaN/ccmz2mid/model"
)

// Clock maps symbolic score time (document grid units, Resolution
// subdivisions per quarter note) to absolute ticks at the output
// resolution. The mapping is monotonically non-decreasing.
type Clock struct {
	docRes uint64
	outRes uint64
}

// NewClock builds the time base for a document by walking the tempo and
// meter breakpoints in symbolic-time order. Breakpoint times must be
// strictly increasing within each list, and the resolved ticks must
// never decrease; either violation is a ParseError, not something to
// silently repair.
func NewClock(doc *model.ScoreDocument, resolution uint16) (*Clock, error) {
	if doc.Resolution == 0 {
		return nil, &model.ParseError{Field: "resolution", Reason: "must be positive"}
	}
	if resolution == 0 {
		return nil, &model.ParseError{Field: "resolution", Reason: "output resolution must be positive"}
	}
	c := &Clock{docRes: uint64(doc.Resolution), outRes: uint64(resolution)}

	if err := checkIncreasing("tempos", tempoTimes(doc.Tempos)); err != nil {
		return nil, err
	}
	if err := checkIncreasing("beatInfos", meterTimes(doc.Meters)); err != nil {
		return nil, err
	}

	// walk the merged timeline and confirm the mapping never steps back
	var lastTick uint64
	ti, mi := 0, 0
	for ti < len(doc.Tempos) || mi < len(doc.Meters) {
		var t uint64
		switch {
		case mi >= len(doc.Meters):
			t = doc.Tempos[ti].Time
			ti++
		case ti >= len(doc.Tempos):
			t = doc.Meters[mi].Time
			mi++
		case doc.Tempos[ti].Time <= doc.Meters[mi].Time:
			t = doc.Tempos[ti].Time
			ti++
		default:
			t = doc.Meters[mi].Time
			mi++
		}
		tick := c.Ticks(t)
		if tick < lastTick {
			return nil, &model.ParseError{
				Field:  "tempos",
				Reason: fmt.Sprintf("time base not monotonic at symbolic time %d", t),
			}
		}
		lastTick = tick
	}

	return c, nil
}

// Ticks converts a symbolic time to an absolute output tick, rounding
// to the nearest grid position.
func (c *Clock) Ticks(t uint64) uint64 {
	return (t*c.outRes + c.docRes/2) / c.docRes
}

func tempoTimes(tempos []model.TempoChange) []uint64 {
	res := make([]uint64, len(tempos))
	for i, t := range tempos {
		res[i] = t.Time
	}
	return res
}

func meterTimes(meters []model.MeterChange) []uint64 {
	res := make([]uint64, len(meters))
	for i, m := range meters {
		res[i] = m.Time
	}
	return res
}

func checkIncreasing(field string, times []uint64) error {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return &model.ParseError{
				Field:  field,
				Reason: fmt.Sprintf("times must be strictly increasing, entry %d repeats or precedes entry %d", i, i-1),
			}
		}
	}
	return nil
}
