package mixer

import (
	"testing"

	"github.com/streamshift/adrestreamer/internal/codec"
)

func TestReplacePreservesFrameCountAndMonotonicPTS(t *testing.T) {
	ad := &stubAdSource{track: createFrames(4, 0.5)}
	r := NewReplace(ad, testParams, codec.CurveLinear, 3_000_000)

	kinds := []codec.ContentKind{
		codec.KindMusic, codec.KindMusic, codec.KindAdvertisement,
		codec.KindAdvertisement, codec.KindAdvertisement, codec.KindMusic,
		codec.KindMusic, codec.KindAdvertisement, codec.KindMusic,
		codec.KindMusic, codec.KindMusic, codec.KindAdvertisement,
	}
	frames := createFrames(len(kinds), 1.0)

	var lastPTS codec.Timestamp
	for i, frame := range frames {
		out := r.Push(kinds[i], frame)
		if i > 0 && out.PTS <= lastPTS {
			t.Fatalf("frame %d: PTS did not increase: got %v after %v", i, out.PTS, lastPTS)
		}
		lastPTS = out.PTS
	}
}

// TestReplaceOverlapRuleKeepsAdPlayingWhileHalfTableRemains matches the
// overlap rule: once an ad segment starts, it keeps playing across a
// classification flip back to content as long as more than half the
// cross-fade table's worth of ad frames remain, flipping back to content
// only once the remaining ad material is down to that threshold.
func TestReplaceOverlapRuleKeepsAdPlayingWhileHalfTableRemains(t *testing.T) {
	ad := &stubAdSource{track: createFrames(8, 0.5)}
	r := NewReplace(ad, testParams, codec.CurveLinear, 3_000_000) // table length 3, half = 1

	r.Push(codec.KindAdvertisement, createFrames(1, 1.0)[0])
	if !r.inAd {
		t.Fatal("expected in_ad after the first advertisement frame")
	}

	contentFrames := createFrames(8, 1.0)
	for i := 0; i < 7; i++ {
		r.Push(codec.KindMusic, contentFrames[i])
		if !r.inAd {
			t.Fatalf("push %d: overlap rule should have kept the ad playing (remains=%d)", i, r.ads.remains())
		}
	}

	r.Push(codec.KindMusic, contentFrames[7])
	if r.inAd {
		t.Fatal("expected the overlap rule to release back to content once remains <= half the table")
	}
}

// TestReplaceDrainRuleSkipsReplacementWhenBufferExceedsAdLength verifies
// that when the buffered content built up during an overlap is longer than
// the next ad track, arriving advertisement-classified frames drain that
// buffer as content instead of starting a new replacement.
func TestReplaceDrainRuleSkipsReplacementWhenBufferExceedsAdLength(t *testing.T) {
	ad := &stubAdSource{track: createFrames(2, 0.5)}
	r := NewReplace(ad, testParams, codec.CurveLinear, 3_000_000)

	buffered := createFrames(5, 0.75)
	r.playBuffer = append([]codec.AudioFrame{}, buffered...)

	probe := createFrames(1, 1.0)[0]
	out := r.Push(codec.KindAdvertisement, probe)
	if !r.draining {
		t.Fatal("expected draining to start once the buffer exceeds the ad track length")
	}
	if sampleValue(out) != 0.75 {
		t.Fatalf("expected the first buffered frame to drain through unchanged, got %v", sampleValue(out))
	}
	if r.ads.played != 0 {
		t.Fatal("expected no ad frames consumed while draining")
	}

	for i := 0; i < 4; i++ {
		out := r.Push(codec.KindAdvertisement, probe)
		if sampleValue(out) != 0.75 {
			t.Fatalf("drain step %d: expected buffered content unchanged, got %v", i, sampleValue(out))
		}
	}

	if len(r.playBuffer) != 0 {
		t.Fatalf("expected the buffer to be fully drained, got %d remaining", len(r.playBuffer))
	}

	// Buffer now empty; the next advertisement frame should start a fresh
	// replacement segment rather than keep draining.
	r.Push(codec.KindAdvertisement, probe)
	if r.draining {
		t.Fatal("expected draining to clear once the buffer empties")
	}
	if !r.inAd {
		t.Fatal("expected a fresh ad segment to start once draining clears")
	}
}

func TestReplaceSilenceFallbackWhenAdSourceExhausted(t *testing.T) {
	ad := &stubAdSource{track: nil}
	r := NewReplace(ad, testParams, codec.CurveLinear, 3_000_000)

	out := r.Push(codec.KindAdvertisement, createFrames(1, 1.0)[0])
	if out.Samples != testParams.SamplesPerFrame {
		t.Fatalf("expected a full-size output frame even with no ad source, got %d samples", out.Samples)
	}
}
