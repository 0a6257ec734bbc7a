package analyzer

import (
	"time"

	"github.com/streamshift/adrestreamer/internal/codec"
)

// DrainDuration is the fixed stride at which the analyzer's classifier
// invocations advance, and the unit `behind`/`ahead` durations are
// expressed in (spec §4.3).
const DrainDuration = 100 * time.Millisecond

// LabelSmoother delays emission by `ahead` steps so a transient minority
// burst surrounded by a majority is averaged away, then projects the
// summed window to a one-hot row, grounded on the original
// `LabelSmoother::push`/`max_out` pair.
type LabelSmoother struct {
	behind int
	ahead  int
	buffer []codec.PredictedLabels
}

// NewLabelSmoother converts behind/ahead wall-clock durations to step
// counts at DrainDuration stride.
func NewLabelSmoother(behind, ahead time.Duration) *LabelSmoother {
	return &LabelSmoother{
		behind: int(behind / DrainDuration),
		ahead:  int(ahead / DrainDuration),
	}
}

// Push appends one predicted-labels row and, once the look-ahead window has
// filled, returns a smoothed one-hot row; otherwise returns (zero, false)
// during warm-up.
func (s *LabelSmoother) Push(labels codec.PredictedLabels) (codec.PredictedLabels, bool) {
	s.buffer = append(s.buffer, labels)

	if len(s.buffer) < s.ahead {
		return codec.PredictedLabels{}, false
	}

	if len(s.buffer) == s.ahead+s.behind+1 {
		s.buffer = s.buffer[1:]
	}

	var sum codec.PredictedLabels
	for _, row := range s.buffer {
		sum = sum.Add(row)
	}
	return sum.OneHotArgMax(), true
}
