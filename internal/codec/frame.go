package codec

import "github.com/pkg/errors"

// Timestamp is a presentation timestamp in microseconds.
type Timestamp int64

// AudioFrame is an immutable block of PCM samples sharing one CodecParams.
// Planes holds one []byte per channel for planar formats, or a single
// interleaved buffer for S16/Flt.
type AudioFrame struct {
	Params  CodecParams
	Samples int // sample count per plane
	Planes  [][]byte
	PTS     Timestamp
}

// ErrPlaneMismatch signals that a frame's planes disagree on sample count.
var ErrPlaneMismatch = errors.New("codec: frame planes have mismatched sample counts")

// NewFrame builds an AudioFrame, validating that every plane carries the
// declared sample count for the given format. Planar formats carry one
// plane per channel of samples*bps bytes; interleaved formats carry a
// single plane of samples*channels*bps bytes.
func NewFrame(params CodecParams, samples int, planes [][]byte, pts Timestamp) (AudioFrame, error) {
	bps := params.SampleFormat.BytesPerSample()
	if bps == 0 {
		return AudioFrame{Params: params, Samples: samples, Planes: planes, PTS: pts}, nil
	}
	wantPerPlane := samples * bps
	if !params.SampleFormat.Planar() {
		wantPerPlane = samples * bps * params.Channels
	}
	for _, plane := range planes {
		if len(plane) != wantPerPlane {
			return AudioFrame{}, errors.Wrapf(ErrPlaneMismatch, "want %d bytes got %d", wantPerPlane, len(plane))
		}
	}
	return AudioFrame{Params: params, Samples: samples, Planes: planes, PTS: pts}, nil
}

// Duration returns the frame's duration in microseconds.
func (f AudioFrame) Duration() Timestamp {
	if f.Params.SampleRate == 0 {
		return 0
	}
	return Timestamp(int64(f.Samples) * 1_000_000 / int64(f.Params.SampleRate))
}

// WithPTS returns a copy of f with a new presentation timestamp.
func (f AudioFrame) WithPTS(pts Timestamp) AudioFrame {
	f.PTS = pts
	return f
}

// Silence returns a zero-filled frame with the same params, sample count,
// and plane layout as f.
func (f AudioFrame) Silence() AudioFrame {
	planes := make([][]byte, len(f.Planes))
	for i, p := range f.Planes {
		planes[i] = make([]byte, len(p))
	}
	return AudioFrame{Params: f.Params, Samples: f.Samples, Planes: planes, PTS: f.PTS}
}
