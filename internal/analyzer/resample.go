package analyzer

import (
	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/codec"
)

// classifierParams is the format the classifier's window requires: 16kHz
// mono S16, interleaved.
var classifierParams = codec.CodecParams{
	SampleRate:   16_000,
	SampleFormat: codec.SampleFormatS16,
	Channels:     1,
}

// classifierResampler feeds live frames through a codec.Resampler to reach
// classifierParams, rebuilding the underlying ffmpeg subprocess whenever the
// source format changes (an ad/source switch mid-stream), grounded on the
// same ffmpeg-backed resampling internal/adlibrary uses to prepare house-ad
// tracks for the mixer. Frames already at classifierParams skip the
// subprocess entirely.
type classifierResampler struct {
	source codec.CodecParams
	r      *codec.Resampler
}

// push feeds frame through the resampler and returns whatever mono S16
// samples are available so far; the subprocess may buffer a frame or two
// before emitting anything.
func (c *classifierResampler) push(frame codec.AudioFrame) ([]int16, error) {
	if !sameFormat(frame.Params, c.source) {
		c.reset(frame.Params)
	}

	if sameFormat(c.source, classifierParams) {
		return monoS16Samples(frame), nil
	}
	if c.r == nil {
		return nil, errors.New("analyzer: classifier resampler unavailable")
	}

	if err := c.r.Push(frame); err != nil {
		return nil, errors.Wrap(err, "analyzer: push frame to classifier resampler")
	}
	out, err := c.r.Drain()
	if err != nil {
		return nil, errors.Wrap(err, "analyzer: drain classifier resampler")
	}

	var samples []int16
	for _, f := range out {
		samples = append(samples, monoS16Samples(f)...)
	}
	return samples, nil
}

func (c *classifierResampler) reset(source codec.CodecParams) {
	if c.r != nil {
		c.r.Close()
		c.r = nil
	}
	if sameFormat(source, classifierParams) {
		c.source = source
		return
	}
	r, err := codec.NewResampler(source, classifierParams, 0)
	if err != nil {
		// Leaves c.source at its prior value so the next frame, even at this
		// same broken format, re-enters reset rather than silently pushing
		// into a nil resampler.
		return
	}
	c.source = source
	c.r = r
}

func (c *classifierResampler) close() {
	if c.r != nil {
		c.r.Close()
	}
}

func sameFormat(a, b codec.CodecParams) bool {
	return a.SampleRate == b.SampleRate && a.SampleFormat == b.SampleFormat && a.Channels == b.Channels
}

// monoS16Samples reads a frame already at classifierParams (16kHz mono S16
// interleaved) as a plain int16 stream.
func monoS16Samples(frame codec.AudioFrame) []int16 {
	if len(frame.Planes) == 0 {
		return nil
	}
	plane := frame.Planes[0]
	n := len(plane) / 2
	if n > frame.Samples {
		n = frame.Samples
	}
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(plane[2*i]) | uint16(plane[2*i+1])<<8)
	}
	return out
}
