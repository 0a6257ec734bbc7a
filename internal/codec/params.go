package codec

// SampleFormat identifies the in-memory layout of PCM samples.
type SampleFormat uint8

const (
	SampleFormatUnknown SampleFormat = iota
	SampleFormatS16
	SampleFormatFlt
	SampleFormatFltPlanar
)

func (f SampleFormat) String() string {
	switch f {
	case SampleFormatS16:
		return "s16"
	case SampleFormatFlt:
		return "flt"
	case SampleFormatFltPlanar:
		return "fltp"
	default:
		return "unknown"
	}
}

// BytesPerSample returns the size of one sample in one plane for the format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatS16:
		return 2
	case SampleFormatFlt, SampleFormatFltPlanar:
		return 4
	default:
		return 0
	}
}

// Planar reports whether samples for different channels live in separate
// buffers (true) or are interleaved in a single buffer (false).
func (f SampleFormat) Planar() bool {
	return f == SampleFormatFltPlanar
}

// CodecParams describes the shape of PCM data flowing between pipeline
// stages. SamplesPerFrame is optional (zero means "unspecified / any").
type CodecParams struct {
	SampleRate       int
	SampleFormat     SampleFormat
	Channels         int
	BitRate          int
	SamplesPerFrame  int
}

// CompatibleForDirectPush reports whether two CodecParams are identical in
// all five fields, meaning a resampler is not required between them.
func (p CodecParams) CompatibleForDirectPush(other CodecParams) bool {
	return p == other
}

// WithSamplesPerFrame returns a copy of p with SamplesPerFrame set.
func (p CodecParams) WithSamplesPerFrame(n int) CodecParams {
	p.SamplesPerFrame = n
	return p
}
