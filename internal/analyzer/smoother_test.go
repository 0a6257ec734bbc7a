package analyzer

import (
	"testing"
	"time"

	"github.com/streamshift/adrestreamer/internal/codec"
)

var (
	labelsMusic = codec.PredictedLabels{0, 1, 0}
	labelsAd    = codec.PredictedLabels{1, 0, 0}
)

func TestLabelSmootherWarmup(t *testing.T) {
	s := NewLabelSmoother(500*time.Millisecond, 1500*time.Millisecond)
	_, ok := s.Push(labelsMusic)
	if ok {
		t.Fatal("expected warm-up to withhold emission on the first push")
	}
}

// TestLabelSmootherDebouncesSingleOutlier matches spec scenario 5:
// behind=500ms/ahead=1500ms (5 behind, 15 ahead at 100ms stride); a lone
// Advertisement row surrounded by Music must never surface as a smoothed
// Advertisement classification.
func TestLabelSmootherDebouncesSingleOutlier(t *testing.T) {
	s := NewLabelSmoother(500*time.Millisecond, 1500*time.Millisecond)

	push := func(row codec.PredictedLabels) {
		smoothed, ok := s.Push(row)
		if !ok {
			return
		}
		if smoothed.ArgMax() == codec.KindAdvertisement {
			t.Fatalf("smoother emitted Advertisement for a single-row outlier")
		}
	}

	for i := 0; i < 20; i++ {
		push(labelsMusic)
	}
	push(labelsAd)
	for i := 0; i < 20; i++ {
		push(labelsMusic)
	}
}

func TestLabelSmootherEmitsAfterAheadFills(t *testing.T) {
	s := NewLabelSmoother(0, 3*DrainDuration)
	if _, ok := s.Push(labelsMusic); ok {
		t.Fatal("should not emit before ahead rows accumulate")
	}
	if _, ok := s.Push(labelsMusic); ok {
		t.Fatal("should not emit before ahead rows accumulate")
	}
	_, ok := s.Push(labelsMusic)
	if !ok {
		t.Fatal("expected emission once ahead rows have accumulated")
	}
}
