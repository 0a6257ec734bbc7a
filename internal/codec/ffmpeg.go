package codec

import (
	"io"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/streamshift/adrestreamer/utils/errorx"
)

// pcmFormatFor maps a SampleFormat to the ffmpeg raw-PCM format token.
func pcmFormatFor(f SampleFormat) string {
	switch f {
	case SampleFormatS16:
		return "s16le"
	case SampleFormatFlt:
		return "f32le"
	case SampleFormatFltPlanar:
		// ffmpeg output is interleaved and is wrapped as a single plane; it is
		// not split per channel, so NewFrame rejects it for multi-channel
		// planar params.
		return "f32le"
	default:
		return "s16le"
	}
}

// ffmpegPipe runs an ffmpeg subprocess reading from an arbitrary io.Reader
// (stdin) and writing raw PCM frames to an output channel, grounded on
// the subprocess+pipe shape used for audio capture devices: build the
// command, pump stdin in one goroutine, drain stdout in another, both
// guarded against panics.
type ffmpegPipe struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	chunkSize int
	out       chan []byte
	errCh     chan error
}

// newFFmpegPipe builds and starts an ffmpeg process that reads from src and
// emits raw interleaved PCM at params on its stdout. inputArgs describes
// src's own format: nil/empty lets ffmpeg auto-probe (an encoded container
// stream carries its own magic bytes), while raw headerless PCM input must
// set "f"/"ar"/"ac" explicitly or ffmpeg cannot parse it at all.
func newFFmpegPipe(src io.Reader, inputArgs ffmpeg.KwArgs, params CodecParams, chunkSize int) (*ffmpegPipe, error) {
	outputArgs := ffmpeg.KwArgs{
		"f":  pcmFormatFor(params.SampleFormat),
		"ar": strconv.Itoa(params.SampleRate),
		"ac": strconv.Itoa(params.Channels),
		"v":  "error",
	}

	node := ffmpeg.Input("pipe:", inputArgs)
	cmd := node.Output("pipe:", outputArgs).Compile()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "codec: open ffmpeg stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "codec: open ffmpeg stdout")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "codec: start ffmpeg")
	}

	p := &ffmpegPipe{
		cmd:       cmd,
		stdin:     stdin,
		stdout:    stdout,
		chunkSize: chunkSize,
		out:       make(chan []byte, 16),
		errCh:     make(chan error, 1),
	}

	errorx.Go(func() {
		defer stdin.Close()
		_, _ = io.Copy(stdin, src)
	})
	errorx.Go(func() {
		defer close(p.out)
		p.runReadLoop()
	})

	return p, nil
}

func (p *ffmpegPipe) runReadLoop() {
	buf := make([]byte, p.chunkSize)
	for {
		n, err := io.ReadFull(p.stdout, buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.out <- chunk
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				p.errCh <- errors.Wrap(err, "codec: read ffmpeg stdout")
			}
			return
		}
	}
}

// Chunks exposes the decoded PCM chunk channel.
func (p *ffmpegPipe) Chunks() <-chan []byte {
	return p.out
}

// Err exposes a fatal subprocess error, if any.
func (p *ffmpegPipe) Err() <-chan error {
	return p.errCh
}

// Close terminates the ffmpeg subprocess, matching the SIGINT-then-kill
// shutdown sequence used for long-running ffmpeg capture devices.
func (p *ffmpegPipe) Close() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGINT); err != nil {
		return p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()
	if err != nil && strings.Contains(err.Error(), "signal:") {
		return nil
	}
	return err
}
