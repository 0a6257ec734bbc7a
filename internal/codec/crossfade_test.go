package codec

import "testing"

const crossFadeEps = 1e-3

func assertPairsNear(t *testing.T, curve string, got []CrossFadePair, want [][2]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d entries want %d", curve, len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		if absDiff(g.FadeOut, w[0]) > crossFadeEps || absDiff(g.FadeIn, w[1]) > crossFadeEps {
			t.Fatalf("%s[%d]: got (%.4f,%.4f) want (%.4f,%.4f)", curve, i, g.FadeOut, g.FadeIn, w[0], w[1])
		}
	}
}

func absDiff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}

func TestGenerateCrossFadeTableLinear(t *testing.T) {
	got := GenerateCrossFadeTable(CurveLinear, 11)
	assertPairsNear(t, "linear", got, [][2]float64{
		{1.0, 0.0}, {0.9, 0.1}, {0.8, 0.2}, {0.7, 0.3}, {0.6, 0.4},
		{0.5, 0.5},
		{0.4, 0.6}, {0.3, 0.7}, {0.2, 0.8}, {0.1, 0.9}, {0.0, 1.0},
	})
}

func TestGenerateCrossFadeTableEqualPower(t *testing.T) {
	got := GenerateCrossFadeTable(CurveEqualPower, 11)
	assertPairsNear(t, "equal-power", got, [][2]float64{
		{1.0, 0.0}, {1.002, 0.040}, {0.992, 0.157}, {0.945, 0.327}, {0.849, 0.520},
		{0.703, 0.703},
		{0.520, 0.849}, {0.327, 0.945}, {0.157, 0.992}, {0.040, 1.002}, {0.0, 1.0},
	})
}

func TestGenerateCrossFadeTableCossin(t *testing.T) {
	got := GenerateCrossFadeTable(CurveCossin, 11)
	assertPairsNear(t, "cossin", got, [][2]float64{
		{1.0, 0.0}, {0.975, 0.024}, {0.904, 0.095}, {0.793, 0.206}, {0.654, 0.345},
		{0.5, 0.5},
		{0.345, 0.654}, {0.206, 0.793}, {0.095, 0.904}, {0.024, 0.975}, {0.0, 1.0},
	})
}

func TestGenerateCrossFadeTableSemicircle(t *testing.T) {
	got := GenerateCrossFadeTable(CurveSemicircle, 11)
	assertPairsNear(t, "semicircle", got, [][2]float64{
		{1.0, 0.0}, {0.979, 0.0}, {0.916, 0.0}, {0.8, 0.0}, {0.6, 0.0},
		{0.0, 0.0},
		{0.0, 0.6}, {0.0, 0.8}, {0.0, 0.916}, {0.0, 0.979}, {0.0, 1.0},
	})
}

func TestGenerateCrossFadeTableParabolic(t *testing.T) {
	got := GenerateCrossFadeTable(CurveParabolic, 11)
	assertPairsNear(t, "parabolic", got, [][2]float64{
		{1.0, 0.0}, {0.97, 0.0}, {0.88, 0.0}, {0.73, 0.0}, {0.519, 0.0},
		{0.25, 0.25},
		{0.0, 0.520}, {0.0, 0.730}, {0.0, 0.880}, {0.0, 0.97}, {0.0, 1.0},
	})
}

func TestCrossFaderExhaustionReturnsB(t *testing.T) {
	params := CodecParams{SampleRate: 44100, SampleFormat: SampleFormatS16, Channels: 1, SamplesPerFrame: 4}
	a, _ := NewFrame(params, 4, [][]byte{{1, 0, 1, 0, 1, 0, 1, 0}}, 0)
	b, _ := NewFrame(params, 4, [][]byte{{2, 0, 2, 0, 2, 0, 2, 0}}, 0)

	frameDuration := a.Duration()
	cf := NewCrossFader(CurveLinear, frameDuration, frameDuration)
	if cf.Len() != 1 {
		t.Fatalf("expected a single-entry table, got %d", cf.Len())
	}
	cf.Reset()
	cf.Apply(a, b) // consumes the only table entry
	out := cf.Apply(a, b)
	if string(out.Planes[0]) != string(b.Planes[0]) {
		t.Fatalf("exhausted cross-fader should return b unchanged")
	}
}

func TestCrossFaderBoundaryCoefficients(t *testing.T) {
	table := GenerateCrossFadeTable(CurveParabolic, 5)
	first, last := table[0], table[len(table)-1]
	if absDiff(first.FadeOut, 1) > 1e-3 || absDiff(first.FadeIn, 0) > 1e-3 {
		t.Fatalf("first coefficient should be (1,0), got (%.4f,%.4f)", first.FadeOut, first.FadeIn)
	}
	if absDiff(last.FadeOut, 0) > 1e-3 || absDiff(last.FadeIn, 1) > 1e-3 {
		t.Fatalf("last coefficient should be (0,1), got (%.4f,%.4f)", last.FadeOut, last.FadeIn)
	}
	for _, p := range table {
		if p.FadeOut < 0 || p.FadeOut > 1 || p.FadeIn < 0 || p.FadeIn > 1 {
			t.Fatalf("coefficient out of [0,1]: (%.4f,%.4f)", p.FadeOut, p.FadeIn)
		}
	}
}
