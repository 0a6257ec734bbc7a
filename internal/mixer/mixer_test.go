package mixer

import (
	"math"

	"github.com/streamshift/adrestreamer/internal/codec"
)

var testParams = codec.CodecParams{
	SampleRate:      4,
	SampleFormat:    codec.SampleFormatFlt,
	Channels:        1,
	SamplesPerFrame: 4,
}

func createFrames(n int, value float32) []codec.AudioFrame {
	frames := make([]codec.AudioFrame, n)
	for i := range frames {
		plane := make([]byte, 4*4)
		bits := math.Float32bits(value)
		for s := 0; s < 4; s++ {
			off := s * 4
			plane[off] = byte(bits)
			plane[off+1] = byte(bits >> 8)
			plane[off+2] = byte(bits >> 16)
			plane[off+3] = byte(bits >> 24)
		}
		f, err := codec.NewFrame(testParams, 4, [][]byte{plane}, 0)
		if err != nil {
			panic(err)
		}
		frames[i] = f
	}
	return frames
}

func sampleValue(f codec.AudioFrame) float32 {
	bits := uint32(f.Planes[0][0]) | uint32(f.Planes[0][1])<<8 | uint32(f.Planes[0][2])<<16 | uint32(f.Planes[0][3])<<24
	return math.Float32frombits(bits)
}

func ptsSeq(n int) []codec.Timestamp {
	gen := codec.NewPTSGenerator(4, 4)
	out := make([]codec.Timestamp, n)
	for i := range out {
		out[i] = gen.Next()
	}
	return out
}

type stubAdSource struct {
	track []codec.AudioFrame
	calls int
}

func (s *stubAdSource) Next() ([]codec.AudioFrame, bool) {
	s.calls++
	if s.track == nil {
		return nil, false
	}
	return s.track, true
}
