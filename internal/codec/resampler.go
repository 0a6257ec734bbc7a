package codec

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Resampler converts frames from source params to target params via an
// ffmpeg subprocess (aresample under the hood), rebucketing output into
// fixed-size frames when a target frame size is configured.
type Resampler struct {
	source, target CodecParams
	frameSamples   int // 0 means "whatever chunking the subprocess produces"
	pw             *io.PipeWriter
	pipe           *ffmpegPipe
	flushed        bool
	leftover       []byte
}

// NewResampler builds a resampler from source to target params. frameSamples
// configures the output frame size; 0 leaves output frames at the
// subprocess's natural chunk size.
func NewResampler(source, target CodecParams, frameSamples int) (*Resampler, error) {
	if source.CompatibleForDirectPush(target) {
		return nil, errors.New("codec: resampler constructed for identical params")
	}
	pr, pw := io.Pipe()
	bps := target.SampleFormat.BytesPerSample()
	chunkBytes := 4096
	if frameSamples > 0 && bps > 0 {
		chunkBytes = frameSamples * target.Channels * bps
	}
	inputArgs := ffmpeg.KwArgs{
		"f":  pcmFormatFor(source.SampleFormat),
		"ar": strconv.Itoa(source.SampleRate),
		"ac": strconv.Itoa(source.Channels),
	}
	pipe, err := newFFmpegPipe(pr, inputArgs, target, chunkBytes)
	if err != nil {
		return nil, errors.Wrap(err, "codec: start resampler")
	}
	return &Resampler{source: source, target: target, frameSamples: frameSamples, pw: pw, pipe: pipe}, nil
}

// Push enqueues one input frame's bytes for resampling.
func (r *Resampler) Push(frame AudioFrame) error {
	for _, plane := range frame.Planes {
		if _, err := r.pw.Write(plane); err != nil {
			return errors.Wrap(err, "codec: push frame to resampler")
		}
	}
	return nil
}

// Flush signals end-of-input. Idempotent.
func (r *Resampler) Flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	return r.pw.Close()
}

// Drain returns zero or more output frames currently available without
// blocking; call repeatedly (or after Flush) to pull everything buffered.
func (r *Resampler) Drain() ([]AudioFrame, error) {
	var frames []AudioFrame
	bps := r.target.SampleFormat.BytesPerSample()
	wantBytes := r.frameSamples * r.target.Channels * bps
	for {
		select {
		case chunk, ok := <-r.pipe.Chunks():
			if !ok {
				if len(r.leftover) > 0 && bps > 0 {
					samples := len(r.leftover) / (r.target.Channels * bps)
					if samples > 0 {
						f, err := NewFrame(r.target, samples, [][]byte{r.leftover}, 0)
						if err != nil {
							return frames, err
						}
						frames = append(frames, f)
					}
					r.leftover = nil
				}
				select {
				case err := <-r.pipe.Err():
					return frames, err
				default:
					return frames, nil
				}
			}
			r.leftover = append(r.leftover, chunk...)
			if wantBytes <= 0 {
				samples := len(r.leftover) / (r.target.Channels * bps)
				f, err := NewFrame(r.target, samples, [][]byte{r.leftover}, 0)
				if err != nil {
					return frames, err
				}
				frames = append(frames, f)
				r.leftover = nil
				continue
			}
			for len(r.leftover) >= wantBytes {
				buf := make([]byte, wantBytes)
				copy(buf, r.leftover[:wantBytes])
				r.leftover = r.leftover[wantBytes:]
				f, err := NewFrame(r.target, r.frameSamples, [][]byte{buf}, 0)
				if err != nil {
					return frames, err
				}
				frames = append(frames, f)
			}
		case err := <-r.pipe.Err():
			return frames, err
		default:
			return frames, nil
		}
	}
}

// NextFrame blocks until one resampled frame is available, the stream ends
// (ok=false, err=nil), or a fatal error occurs. Used for whole-track batch
// resampling where every output frame must be collected, as opposed to the
// non-blocking Drain used on a live per-request pipeline.
func (r *Resampler) NextFrame() (AudioFrame, bool, error) {
	bps := r.target.SampleFormat.BytesPerSample()
	wantBytes := r.frameSamples * r.target.Channels * bps

	for {
		if wantBytes > 0 {
			for len(r.leftover) >= wantBytes {
				buf := make([]byte, wantBytes)
				copy(buf, r.leftover[:wantBytes])
				r.leftover = r.leftover[wantBytes:]
				return NewFrame(r.target, r.frameSamples, [][]byte{buf}, 0)
			}
		}

		select {
		case chunk, ok := <-r.pipe.Chunks():
			if !ok {
				if len(r.leftover) > 0 && bps > 0 {
					samples := len(r.leftover) / (r.target.Channels * bps)
					if samples > 0 {
						buf := r.leftover
						r.leftover = nil
						frame, err := NewFrame(r.target, samples, [][]byte{buf}, 0)
						return frame, err == nil, err
					}
				}
				select {
				case err := <-r.pipe.Err():
					return AudioFrame{}, false, err
				default:
					return AudioFrame{}, false, nil
				}
			}
			r.leftover = append(r.leftover, chunk...)
			if wantBytes <= 0 {
				buf := r.leftover
				r.leftover = nil
				frame, err := NewFrame(r.target, len(buf)/(r.target.Channels*bps), [][]byte{buf}, 0)
				return frame, err == nil, err
			}
		case err := <-r.pipe.Err():
			return AudioFrame{}, false, err
		}
	}
}

// Close releases the resampler's subprocess resources.
func (r *Resampler) Close() error {
	_ = r.Flush()
	return r.pipe.Close()
}
