package codec

import (
	"io"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/streamshift/adrestreamer/utils/errorx"
)

// EncoderCodec names a supported output codec.
type EncoderCodec uint8

const (
	EncoderAAC EncoderCodec = iota
	EncoderOpus
)

func (c EncoderCodec) ffmpegName() string {
	if c == EncoderOpus {
		return "libopus"
	}
	return "aac"
}

// Encoder accepts PCM frames of arbitrary size (rebucketing to its own
// frame size is ffmpeg's job internally) and emits encoded packets on its
// output channel, muxed into ADTS (AAC) or Ogg (Opus). Exposes its own PTS
// generator, initialized to the encoder's own time base.
type Encoder struct {
	codec   EncoderCodec
	params  CodecParams
	pts     *PTSGenerator
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	packets chan []byte
	errCh   chan error
	flushed bool
}

// NewEncoder starts an ffmpeg subprocess encoding raw PCM at params into
// codec's output format.
func NewEncoder(codecKind EncoderCodec, params CodecParams) (*Encoder, error) {
	inputArgs := ffmpeg.KwArgs{
		"f":  pcmFormatFor(params.SampleFormat),
		"ar": strconv.Itoa(params.SampleRate),
		"ac": strconv.Itoa(params.Channels),
	}
	outputArgs := ffmpeg.KwArgs{
		"c:a": codecKind.ffmpegName(),
		"v":   "error",
	}
	if params.BitRate > 0 {
		outputArgs["b:a"] = strconv.Itoa(params.BitRate)
	}
	if codecKind == EncoderAAC {
		outputArgs["f"] = "adts"
	} else {
		outputArgs["f"] = "ogg"
	}

	node := ffmpeg.Input("pipe:", inputArgs)
	cmd := node.Output("pipe:", outputArgs).Compile()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "codec: open encoder stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "codec: open encoder stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "codec: start encoder")
	}

	e := &Encoder{
		codec:   codecKind,
		params:  params,
		pts:     NewPTSGenerator(params.SamplesPerFrame, params.SampleRate),
		cmd:     cmd,
		stdin:   stdin,
		stdout:  stdout,
		packets: make(chan []byte, 32),
		errCh:   make(chan error, 1),
	}

	errorx.Go(func() {
		defer close(e.packets)
		buf := make([]byte, 4096)
		for {
			n, err := e.stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				e.packets <- chunk
			}
			if err != nil {
				if err != io.EOF {
					e.errCh <- errors.Wrap(err, "codec: read encoder output")
				}
				return
			}
		}
	})

	return e, nil
}

// PTS returns the encoder's own presentation timestamp generator.
func (e *Encoder) PTS() *PTSGenerator {
	return e.pts
}

// Push feeds one PCM frame to the encoder.
func (e *Encoder) Push(frame AudioFrame) error {
	for _, plane := range frame.Planes {
		if _, err := e.stdin.Write(plane); err != nil {
			return errors.Wrap(err, "codec: push frame to encoder")
		}
	}
	return nil
}

// Packets exposes the encoded output chunk channel.
func (e *Encoder) Packets() <-chan []byte {
	return e.packets
}

// Err exposes a fatal encoder subprocess error, if any.
func (e *Encoder) Err() <-chan error {
	return e.errCh
}

// Flush finalizes the encoder, signalling end-of-input. Idempotent.
func (e *Encoder) Flush() error {
	if e.flushed {
		return nil
	}
	e.flushed = true
	return e.stdin.Close()
}

// Close releases the encoder's subprocess resources.
func (e *Encoder) Close() error {
	_ = e.Flush()
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	if err := e.cmd.Process.Signal(syscall.SIGINT); err != nil {
		return e.cmd.Process.Kill()
	}
	return e.cmd.Wait()
}
