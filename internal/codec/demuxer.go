package codec

import "io"

// Packet is a chunk of still-encoded bytes in container order.
type Packet struct {
	Data []byte
}

// Demuxer reads encoded bytes from a source in container order and exposes
// the declared stream codec parameters. It does not parse container boxes
// itself (ffmpeg does that downstream, in the Decoder); its job is to hand
// packets to the decoder in order and track a best-effort parameter guess,
// which the pipeline wiring refines once the decoder's first frame is known.
type Demuxer struct {
	src       io.Reader
	params    CodecParams
	chunkSize int
}

// NewDemuxer wraps src, assuming declared as the stream's parameters until
// corrected by the first decoded frame.
func NewDemuxer(src io.Reader, declared CodecParams) *Demuxer {
	if declared.SampleRate == 0 {
		declared.SampleRate = 44100
	}
	if declared.Channels == 0 {
		declared.Channels = 2
	}
	return &Demuxer{src: src, params: declared, chunkSize: 4096}
}

// Params returns the demuxer's current best-effort stream parameters.
func (d *Demuxer) Params() CodecParams {
	return d.params
}

// ReadPacket pulls the next chunk of encoded bytes. A zero-length packet
// with a nil error is a transient "no data yet" condition, matching the
// HLS unstreamer's Read semantics one layer down.
func (d *Demuxer) ReadPacket() (Packet, error) {
	buf := make([]byte, d.chunkSize)
	n, err := d.src.Read(buf)
	if n > 0 {
		return Packet{Data: buf[:n]}, nil
	}
	return Packet{}, err
}
