package mixer

import "github.com/streamshift/adrestreamer/internal/codec"

// Silence cross-fades into and out of a zeroed frame whenever the
// classifier reports Advertisement, instead of playing a replacement ad.
type Silence struct {
	crossFader *codec.CrossFader
	pts        *codec.PTSGenerator
	inAd       bool
}

// NewSilence builds a silence mixer whose output cadence follows
// targetParams (the encoder's frame shape) and whose cross-fade table uses
// curve sized from fadeDuration against that same cadence.
func NewSilence(targetParams codec.CodecParams, curve codec.CrossFadeCurve, fadeDuration codec.Timestamp) *Silence {
	return &Silence{
		pts:        codec.NewPTSGenerator(targetParams.SamplesPerFrame, targetParams.SampleRate),
		crossFader: codec.NewCrossFader(curve, fadeDuration, frameDuration(targetParams)),
	}
}

// Push implements Mixer.
func (s *Silence) Push(kind codec.ContentKind, frame codec.AudioFrame) codec.AudioFrame {
	silence := frame.Silence()

	if kind == codec.KindAdvertisement {
		if !s.inAd {
			s.crossFader.Reset()
			s.inAd = true
		}
		pair := s.crossFader.Next()
		return pair.ApplyFrame(frame, silence).WithPTS(s.pts.Next())
	}

	if s.inAd {
		s.crossFader.Reset()
		s.inAd = false
	}
	pair := s.crossFader.Next()
	return pair.ApplyFrame(silence, frame).WithPTS(s.pts.Next())
}
