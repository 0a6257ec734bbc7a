package codec

import (
	"testing"

	"pgregory.net/rapid"
)

// TestCrossFadeTableCoefficientsStayNonNegative checks clampPair's floor
// holds across every curve and table size, not just the cases exercised by
// crossfade_test.go's fixed tables.
func TestCrossFadeTableCoefficientsStayNonNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		curve := CrossFadeCurve(rapid.IntRange(0, int(CurveSemicircle)).Draw(t, "curve"))
		size := rapid.IntRange(1, 512).Draw(t, "size")

		for _, pair := range GenerateCrossFadeTable(curve, size) {
			if pair.FadeOut < 0 || pair.FadeIn < 0 {
				t.Fatalf("curve %v size %d produced negative coefficient: %+v", curve, size, pair)
			}
		}
	})
}

// TestPTSGeneratorIsMonotonic checks Next never goes backwards across
// arbitrary frame-size/sample-rate sequences, including the Update calls a
// request applies when the final flushed frame is short.
func TestPTSGeneratorIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sampleRate := rapid.IntRange(8_000, 192_000).Draw(t, "sampleRate")
		samplesPerFrame := rapid.IntRange(1, 4_096).Draw(t, "samplesPerFrame")
		gen := NewPTSGenerator(samplesPerFrame, sampleRate)

		var last Timestamp
		steps := rapid.IntRange(1, 64).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "resize") {
				gen.Update(rapid.IntRange(1, 4_096).Draw(t, "newSamplesPerFrame"), sampleRate)
			}
			ts := gen.Next()
			if i > 0 && ts < last {
				t.Fatalf("pts went backwards: %d then %d", last, ts)
			}
			last = ts
		}
	})
}
