package codec

import (
	"io"

	"github.com/pkg/errors"
)

// Decoder consumes packets and yields AudioFrames by shelling out to an
// ffmpeg subprocess, grounded on the pipe+subprocess shape used for
// ffmpeg-based audio capture: push bytes into the process's stdin, drain
// raw PCM off its stdout.
type Decoder struct {
	target  CodecParams
	pw      *io.PipeWriter
	pipe    *ffmpegPipe
	flushed bool
}

// NewDecoder builds a decoder that emits frames at target params with
// frameSamples samples per plane (the last frame on flush may be shorter).
func NewDecoder(target CodecParams, frameSamples int) (*Decoder, error) {
	pr, pw := io.Pipe()
	chunkBytes := frameSamples * target.Channels * target.SampleFormat.BytesPerSample()
	if chunkBytes <= 0 {
		chunkBytes = 4096
	}
	pipe, err := newFFmpegPipe(pr, nil, target, chunkBytes)
	if err != nil {
		return nil, errors.Wrap(err, "codec: start decoder")
	}
	return &Decoder{target: target, pw: pw, pipe: pipe}, nil
}

// PushPacket feeds one packet's bytes to the underlying decode process.
func (d *Decoder) PushPacket(pkt Packet) error {
	_, err := d.pw.Write(pkt.Data)
	if err != nil {
		return errors.Wrap(err, "codec: push packet to decoder")
	}
	return nil
}

// Flush signals end-of-input to the decoder. Idempotent.
func (d *Decoder) Flush() error {
	if d.flushed {
		return nil
	}
	d.flushed = true
	return d.pw.Close()
}

// NextFrame blocks until a decoded frame is available, the stream ends
// (ok=false, err=nil), or a fatal error occurs.
func (d *Decoder) NextFrame() (AudioFrame, bool, error) {
	select {
	case chunk, ok := <-d.pipe.Chunks():
		if !ok {
			select {
			case err := <-d.pipe.Err():
				return AudioFrame{}, false, err
			default:
				return AudioFrame{}, false, nil
			}
		}
		bps := d.target.SampleFormat.BytesPerSample()
		samples := len(chunk) / (d.target.Channels * bps)
		frame, err := NewFrame(d.target, samples, [][]byte{chunk}, 0)
		if err != nil {
			return AudioFrame{}, false, err
		}
		return frame, true, nil
	case err := <-d.pipe.Err():
		return AudioFrame{}, false, err
	}
}

// Close releases the decoder's subprocess resources.
func (d *Decoder) Close() error {
	_ = d.Flush()
	return d.pipe.Close()
}
