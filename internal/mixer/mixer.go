package mixer

import "github.com/streamshift/adrestreamer/internal/codec"

// Mixer is the shared contract for all three replacement strategies: push a
// classified frame, get back an output frame with a freshly assigned,
// monotonic PTS. Implementations own their cross-fade state internally.
type Mixer interface {
	Push(kind codec.ContentKind, frame codec.AudioFrame) codec.AudioFrame
}

// EntryFadeDuration is the duration of the always-on fade-in applied on top
// of whichever mixer is selected, masking analyzer warm-up artefacts at the
// start of every request.
const EntryFadeDuration = codec.Timestamp(1_500_000) // 1.5s, microseconds

// MixerFadeDuration is the cross-fade length used by the Silence and Replace
// mixers' internal cross-faders.
const MixerFadeDuration = codec.Timestamp(1_500_000)

// frameDuration returns the wall-clock length of one frame shaped by params,
// used to size a mixer's cross-fade table against its own output cadence
// rather than whatever cadence happens to arrive on a given input frame.
func frameDuration(params codec.CodecParams) codec.Timestamp {
	if params.SampleRate <= 0 {
		return 0
	}
	return codec.Timestamp(int64(params.SamplesPerFrame) * 1_000_000 / int64(params.SampleRate))
}

// FrameDuration exports frameDuration for callers outside this package that
// need to size their own cross-fader against the same codec params a mixer
// was built from (the request pipeline's entry fade-in).
func FrameDuration(params codec.CodecParams) codec.Timestamp {
	return frameDuration(params)
}
