// Package pipeline wires one request's worth of demux, decode, classify,
// mix, and encode stages together, grounded on the original restreamer's
// play route: a decoder loop feeding an analyzer, mixer output cross-faded
// once more on entry, and an encoder loop draining to the response writer.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/streamshift/adrestreamer/internal/adlibrary"
	"github.com/streamshift/adrestreamer/internal/analyzer"
	"github.com/streamshift/adrestreamer/internal/classifier"
	"github.com/streamshift/adrestreamer/internal/codec"
	"github.com/streamshift/adrestreamer/internal/configs"
	"github.com/streamshift/adrestreamer/internal/hls"
	"github.com/streamshift/adrestreamer/internal/mixer"
	"github.com/streamshift/adrestreamer/internal/recording"
	"github.com/streamshift/adrestreamer/utils/errorx"
)

// Action selects which mixer strategy a request uses. A Request with an
// empty Action falls back to the server's configured default strategy;
// ParseAction maps an absent query value to passthrough, not to that
// default.
type Action string

const (
	ActionPassthrough Action = "passthrough"
	ActionSilence     Action = "silence"
	ActionReplace     Action = "replace"
)

// ErrUnknownAction is returned by ParseAction for anything outside the
// three known actions.
var ErrUnknownAction = errors.New("pipeline: unknown action")

// ParseAction validates raw against the three known actions, defaulting to
// passthrough when raw is empty.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case "":
		return ActionPassthrough, nil
	case ActionPassthrough, ActionSilence, ActionReplace:
		return Action(raw), nil
	default:
		return "", errors.Wrapf(ErrUnknownAction, "%q", raw)
	}
}

// decodeFrameSamples is the frame size requested from the decoder before
// the first decoded frame is known; it becomes the request's
// samples-per-frame once that first frame arrives.
const decodeFrameSamples = 1024

// defaultBitRate is used for the output encoder when the source's declared
// bit rate isn't available through the demuxer layer (the demuxer here
// only tracks a best-effort PCM shape, not the source's container bit
// rate).
const defaultBitRate = 128_000

// decodeWorkingParams is the PCM shape requested from the decoder. Sample
// rate and channel count are carried straight through to the encoder
// unchanged; SamplesPerFrame is filled in once the first frame arrives.
var decodeWorkingParams = codec.CodecParams{
	SampleRate:   44_100,
	SampleFormat: codec.SampleFormatFlt,
	Channels:     2,
	BitRate:      defaultBitRate,
}

// Deps bundles the process-wide collaborators a request pulls from: the
// loaded classifier model and the ad library backing the Replace mixer.
// Both are safe for concurrent use by many simultaneous requests.
type Deps struct {
	Classifier classifier.Classifier
	AdProvider adlibrary.Provider
}

// Request describes one /play invocation.
type Request struct {
	ID     string
	Source string
	Action Action
	Config *configs.Config
}

func (r Request) curve() codec.CrossFadeCurve {
	switch r.Config.Mixer.Curve {
	case "linear":
		return codec.CurveLinear
	case "equalPower":
		return codec.CurveEqualPower
	case "cossin":
		return codec.CurveCossin
	case "semicircle":
		return codec.CurveSemicircle
	default:
		return codec.CurveParabolic
	}
}

func (r Request) action() Action {
	if r.Action != "" {
		return r.Action
	}
	return Action(r.Config.Mixer.DefaultStrategy)
}

// Ready is invoked once the encoder is constructed and before any encoded
// bytes are written, carrying the output's codec params. The HTTP layer
// uses this as the point to send status 200 and the streaming headers;
// returning a non-nil error aborts the request before anything is written.
type Ready func(codec.CodecParams) error

// RecorderFactory builds the diagnostic PCM recorder for a request once its
// working codec params are known. A nil factory (or one returning a nil
// recorder) disables recording for the request.
type RecorderFactory func(codec.CodecParams) (*recording.Recorder, error)

// Run executes one request end to end, writing encoded AAC chunks to w as
// they become available, until the source ends, a fatal error occurs, or
// ctx is cancelled (the process-wide terminator). newRecorder may be nil to
// disable the diagnostic PCM tee.
func Run(ctx context.Context, req Request, deps Deps, newRecorder RecorderFactory, w io.Writer, ready Ready) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	errorx.Go(func() {
		select {
		case <-ctx.Done():
			close(stop)
		case <-done:
		}
	})

	source, err := hls.Open(req.Source, stop)
	if err != nil {
		return errors.Wrap(err, "pipeline: open source")
	}

	demuxer := codec.NewDemuxer(source, decodeWorkingParams)
	decoder, err := codec.NewDecoder(decodeWorkingParams, decodeFrameSamples)
	if err != nil {
		return errors.Wrap(err, "pipeline: start decoder")
	}
	defer decoder.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feedDecoder(gctx, demuxer, decoder)
	})

	firstFrame, ok, err := decoder.NextFrame()
	if err != nil {
		return errors.Wrap(err, "pipeline: decode first frame")
	}
	if !ok {
		return errors.New("pipeline: source produced no audio frame")
	}

	workingParams := decodeWorkingParams.WithSamplesPerFrame(firstFrame.Samples)

	encoder, err := codec.NewEncoder(codec.EncoderAAC, workingParams)
	if err != nil {
		return errors.Wrap(err, "pipeline: start encoder")
	}
	defer encoder.Close()

	if ready != nil {
		if err := ready(workingParams); err != nil {
			return err
		}
	}

	var recorder *recording.Recorder
	if newRecorder != nil {
		if recorder, err = newRecorder(workingParams); err != nil {
			slog.Warn("pipeline: recorder disabled for request", "requestId", req.ID, "error", err)
			recorder = nil
		}
	}
	if recorder != nil {
		defer recorder.Close()
	}

	smoother := analyzer.NewLabelSmoother(
		time.Duration(req.Config.Smoother.BehindMS)*time.Millisecond,
		time.Duration(req.Config.Smoother.AheadMS)*time.Millisecond,
	)
	model := analyzer.New(deps.Classifier, smoother)
	defer model.Close()

	mix, err := buildMixer(req, deps, workingParams)
	if err != nil {
		return errors.Wrap(err, "pipeline: build mixer")
	}

	entryFader := codec.NewCrossFader(codec.CurveLinear, mixer.EntryFadeDuration, mixer.FrameDuration(workingParams))
	entryFader.Reset()

	g.Go(func() error {
		return drainEncoder(encoder, w)
	})

	g.Go(func() error {
		runErr := runLoop(gctx, decoder, model, mix, entryFader, encoder, recorder, firstFrame)
		if err := encoder.Flush(); err != nil && runErr == nil {
			return errors.Wrap(err, "pipeline: flush encoder")
		}
		return runErr
	})

	return g.Wait()
}

// feedDecoder polls the demuxer (whose ReadPacket is non-blocking: a
// zero-length packet with a nil error just means "no data yet") and pushes
// whatever bytes arrive into the decoder, until the source ends, ctx is
// cancelled, or a fatal error occurs.
func feedDecoder(ctx context.Context, demuxer *codec.Demuxer, decoder *codec.Decoder) error {
	for {
		select {
		case <-ctx.Done():
			return decoder.Flush()
		default:
		}

		pkt, err := demuxer.ReadPacket()
		if err != nil {
			if err == io.EOF {
				return decoder.Flush()
			}
			return errors.Wrap(err, "pipeline: read source packet")
		}
		if len(pkt.Data) == 0 {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		if err := decoder.PushPacket(pkt); err != nil {
			return err
		}
	}
}

// runLoop is the request's decoder loop: pull decoded frames, push them
// through the analyzer, run the mixer and entry fade on whatever comes
// back out, and hand the result to the encoder. firstFrame is the frame
// already pulled to learn the request's working codec params.
func runLoop(
	ctx context.Context,
	decoder *codec.Decoder,
	model *analyzer.BufferedAnalyzer,
	mix mixer.Mixer,
	entryFader *codec.CrossFader,
	encoder *codec.Encoder,
	recorder *recording.Recorder,
	firstFrame codec.AudioFrame,
) error {
	emit := func(frame codec.AudioFrame) error {
		if recorder != nil {
			recorder.Push(recording.Original, frame)
		}
		return pushAnalyzed(model, mix, entryFader, encoder, recorder, frame)
	}

	if err := emit(firstFrame); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, ok, err := decoder.NextFrame()
		if err != nil {
			return errors.Wrap(err, "pipeline: decode frame")
		}
		if !ok {
			return nil
		}
		if err := emit(frame); err != nil {
			return err
		}
	}
}

// pushAnalyzed enqueues frame with the analyzer and drains every
// (kind, frame) pair it has ready, running each through the mixer, the
// entry fade-in, and the encoder in turn.
func pushAnalyzed(
	model *analyzer.BufferedAnalyzer,
	mix mixer.Mixer,
	entryFader *codec.CrossFader,
	encoder *codec.Encoder,
	recorder *recording.Recorder,
	frame codec.AudioFrame,
) error {
	processed, ok, err := model.Push(frame)
	if err != nil {
		return errors.Wrap(err, "pipeline: analyzer disconnected")
	}
	if !ok {
		return nil
	}

	mixed := mix.Push(processed.Kind, processed.Frame)
	out := entryFader.Apply(mixed.Silence(), mixed)

	if recorder != nil {
		recorder.Push(recording.Processed, out)
	}

	if err := encoder.Push(out); err != nil {
		return errors.Wrap(err, "pipeline: push frame to encoder")
	}
	return nil
}

// drainEncoder copies encoded packets to w as they arrive, until the
// encoder's output channel closes or a fatal subprocess error surfaces.
func drainEncoder(encoder *codec.Encoder, w io.Writer) error {
	packets := encoder.Packets()
	for packets != nil {
		select {
		case chunk, ok := <-packets:
			if !ok {
				packets = nil
				continue
			}
			if _, err := w.Write(chunk); err != nil {
				return errors.Wrap(err, "pipeline: write response chunk")
			}
			if f, ok := w.(interface{ Flush() }); ok {
				f.Flush()
			}
		case err := <-encoder.Err():
			if err != nil {
				return errors.Wrap(err, "pipeline: encoder subprocess")
			}
		}
	}
	return nil
}

func buildMixer(req Request, deps Deps, params codec.CodecParams) (mixer.Mixer, error) {
	curve := req.curve()
	fade := mixer.MixerFadeDuration

	switch req.action() {
	case ActionSilence:
		return mixer.NewSilence(params, curve, fade), nil
	case ActionReplace:
		if deps.AdProvider == nil {
			return nil, errors.New("pipeline: replace action requires an ad library")
		}
		planner, err := adlibrary.NewPlanner(deps.AdProvider, params)
		if err != nil {
			return nil, errors.Wrap(err, "pipeline: build ad planner")
		}
		return mixer.NewReplace(planner, params, curve, fade), nil
	case ActionPassthrough:
		return mixer.NewPassthrough(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownAction, "%q", req.action())
	}
}
