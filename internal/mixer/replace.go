package mixer

import "github.com/streamshift/adrestreamer/internal/codec"

// AdSource supplies the frames of the next planner-selected ad, grounded on
// the ad planner's round-robin "next" call.
type AdSource interface {
	Next() ([]codec.AudioFrame, bool)
}

// adCursor tracks playback position within the currently selected ad track.
type adCursor struct {
	source AdSource
	track  []codec.AudioFrame
	played int
}

func (c *adCursor) start() {
	track, ok := c.source.Next()
	if !ok {
		track = nil
	}
	c.track = track
	c.played = 0
}

func (c *adCursor) next() (codec.AudioFrame, bool) {
	if c.played >= len(c.track) {
		return codec.AudioFrame{}, false
	}
	f := c.track[c.played]
	c.played++
	return f, true
}

func (c *adCursor) remains() int { return len(c.track) - c.played }
func (c *adCursor) len() int     { return len(c.track) }

// Replace swaps Advertisement-classified regions for a planner-selected ad
// track, cross-fading in and out. It buffers content frames so an
// in-progress ad can finish cleanly, and drains that buffer as content
// instead of starting a new ad once the buffer has grown larger than the
// replacement can cover.
type Replace struct {
	crossFader *codec.CrossFader
	pts        *codec.PTSGenerator

	ads        adCursor
	inAd       bool
	draining   bool
	playBuffer []codec.AudioFrame
}

// NewReplace builds a Replace mixer drawing ad tracks from source. Its
// output cadence and cross-fade table are sized from targetParams (the
// encoder's frame shape), fixed for the life of the mixer.
func NewReplace(source AdSource, targetParams codec.CodecParams, curve codec.CrossFadeCurve, fadeDuration codec.Timestamp) *Replace {
	return &Replace{
		ads:        adCursor{source: source},
		pts:        codec.NewPTSGenerator(targetParams.SamplesPerFrame, targetParams.SampleRate),
		crossFader: codec.NewCrossFader(curve, fadeDuration, frameDuration(targetParams)),
	}
}

// Push implements Mixer.
func (r *Replace) Push(kind codec.ContentKind, frame codec.AudioFrame) codec.AudioFrame {
	if kind == codec.KindAdvertisement {
		return r.advertisement(frame)
	}
	return r.content(frame)
}

func (r *Replace) popBuffer(fallback codec.AudioFrame) codec.AudioFrame {
	if len(r.playBuffer) == 0 {
		return fallback
	}
	f := r.playBuffer[0]
	r.playBuffer = r.playBuffer[1:]
	return f
}

func (r *Replace) content(frame codec.AudioFrame) codec.AudioFrame {
	r.playBuffer = append(r.playBuffer, frame)

	if r.inAd && r.ads.remains() > r.crossFader.Len()/2 {
		return r.advertisement(frame)
	}

	if r.inAd {
		r.crossFader.Reset()
	}
	r.inAd = false

	pair := r.crossFader.Next()
	ad := frame.Silence()
	if pair.FadeOut > 0 {
		if f, ok := r.ads.next(); ok {
			ad = f
		}
	}

	out := pair.ApplyFrame(ad, r.popBuffer(frame))
	return out.WithPTS(r.pts.Next())
}

func (r *Replace) advertisement(frame codec.AudioFrame) codec.AudioFrame {
	if len(r.playBuffer) == 0 {
		r.draining = false
	} else if !r.draining && !r.inAd {
		r.draining = len(r.playBuffer) > r.ads.len()
	}

	if r.draining {
		out := r.popBuffer(frame)
		return out.WithPTS(r.pts.Next())
	}

	if !r.inAd {
		r.crossFader.Reset()
		r.ads.start()
		r.inAd = true
	}

	pair := r.crossFader.Next()
	ad := frame.Silence()
	if pair.FadeIn > 0 {
		if f, ok := r.ads.next(); ok {
			ad = f
		}
	}

	out := pair.ApplyFrame(frame, ad)
	return out.WithPTS(r.pts.Next())
}
