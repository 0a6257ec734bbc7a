package mixer

import (
	"testing"

	"github.com/streamshift/adrestreamer/internal/codec"
)

func TestPassthroughAssignsMonotonicPTSAndIgnoresKind(t *testing.T) {
	p := NewPassthrough()
	frames := createFrames(5, 1.0)
	wantPTS := ptsSeq(5)

	kinds := []codec.ContentKind{
		codec.KindMusic, codec.KindAdvertisement, codec.KindMusic,
		codec.KindAdvertisement, codec.KindAdvertisement,
	}

	for i, frame := range frames {
		out := p.Push(kinds[i], frame)
		if sampleValue(out) != 1 {
			t.Fatalf("frame %d: passthrough must not alter sample content", i)
		}
		if out.PTS != wantPTS[i] {
			t.Fatalf("frame %d: got PTS %v, want %v", i, out.PTS, wantPTS[i])
		}
	}
}
