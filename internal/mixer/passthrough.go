package mixer

import "github.com/streamshift/adrestreamer/internal/codec"

// Passthrough assigns a fresh monotonic PTS to every incoming frame and
// otherwise leaves it untouched. Classification is ignored entirely.
type Passthrough struct {
	pts *codec.PTSGenerator
}

// NewPassthrough builds an empty passthrough mixer; its PTS generator is
// initialized from the first pushed frame's codec params.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Push implements Mixer.
func (p *Passthrough) Push(_ codec.ContentKind, frame codec.AudioFrame) codec.AudioFrame {
	if p.pts == nil {
		p.pts = codec.NewPTSGenerator(frame.Samples, frame.Params.SampleRate)
	}
	return frame.WithPTS(p.pts.Next())
}
