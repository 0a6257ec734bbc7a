package codec

// PTSGenerator produces monotonically increasing presentation timestamps
// for a stream of fixed-size frames, grounded on the original codec's
// `Pts::next` (timestamp = duration * counter, in microseconds).
type PTSGenerator struct {
	samplesPerFrame int64
	sampleRate      int64
	counter         int64
}

// NewPTSGenerator builds a generator for frames of samplesPerFrame samples
// at sampleRate Hz.
func NewPTSGenerator(samplesPerFrame, sampleRate int) *PTSGenerator {
	return &PTSGenerator{samplesPerFrame: int64(samplesPerFrame), sampleRate: int64(sampleRate)}
}

// Next returns the timestamp for the current counter value and advances it.
func (p *PTSGenerator) Next() Timestamp {
	if p.sampleRate == 0 {
		p.counter++
		return 0
	}
	ts := p.counter * p.samplesPerFrame * 1_000_000 / p.sampleRate
	p.counter++
	return Timestamp(ts)
}

// Update changes the frame size the generator assumes going forward,
// matching the original's `Pts::update` (a frame's actual duration can
// differ from the nominal one, e.g. on the final flushed frame). The counter
// is moved forward so the next timestamp is not earlier than the one the old
// frame size would have produced.
func (p *PTSGenerator) Update(samplesPerFrame, sampleRate int) {
	var next int64
	if p.sampleRate != 0 {
		next = p.counter * p.samplesPerFrame * 1_000_000 / p.sampleRate
	}
	p.samplesPerFrame = int64(samplesPerFrame)
	p.sampleRate = int64(sampleRate)
	if step := p.samplesPerFrame * 1_000_000; step > 0 && p.sampleRate > 0 {
		p.counter = (next*p.sampleRate + step - 1) / step
	}
}

// Reset rewinds the counter to zero without changing frame size.
func (p *PTSGenerator) Reset() {
	p.counter = 0
}
