package adlibrary

import (
	"testing"

	"github.com/streamshift/adrestreamer/internal/codec"
)

func buildTestCache(id AdId, params codec.CodecParams, track []codec.AudioFrame) *Cache {
	c := NewCache()
	c.tracks[id] = trackCacheItem{params: params, track: track}
	c.resampled[resampledKey{id: id, params: params}] = &track
	return c
}

func sampleTrack(params codec.CodecParams, frames, samples int) []codec.AudioFrame {
	track := make([]codec.AudioFrame, frames)
	for i := range track {
		planes := [][]byte{make([]byte, samples*params.Channels*params.SampleFormat.BytesPerSample())}
		if params.SampleFormat.Planar() {
			planes = make([][]byte, params.Channels)
			for c := range planes {
				planes[c] = make([]byte, samples*params.SampleFormat.BytesPerSample())
			}
		}
		f, err := codec.NewFrame(params, samples, planes, 0)
		if err != nil {
			panic(err)
		}
		track[i] = f
	}
	return track
}

// TestCacheGetIsIdentityStableForSameParams matches spec scenario 5: two
// successive get(id, params) calls return the same shared sequence, while a
// different target params value produces a distinct sequence.
func TestCacheGetIsIdentityStableForSameParams(t *testing.T) {
	params := codec.CodecParams{SampleRate: 44100, SampleFormat: codec.SampleFormatFltPlanar, Channels: 2, SamplesPerFrame: 512}
	track := sampleTrack(params, 4, 512)
	id := NewAdId()
	c := buildTestCache(id, params, track)

	a, err := c.Get(id, params)
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	b, err := c.Get(id, params)
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if a != b {
		t.Fatal("expected repeated get with identical params to return the same shared pointer")
	}

	otherParams := params.WithSamplesPerFrame(128)
	c2 := buildTestCache(id, params, track)
	// seed the alternate-params path through the normal resample-miss route
	// would require a real resampler; instead assert the cache never
	// conflates distinct keys by pre-seeding both and checking identity.
	altTrack := sampleTrack(otherParams, 4, 128)
	c2.resampled[resampledKey{id: id, params: otherParams}] = &altTrack
	cTrack, err := c2.Get(id, params)
	if err != nil {
		t.Fatalf("get base: %v", err)
	}
	oTrack, err := c2.Get(id, otherParams)
	if err != nil {
		t.Fatalf("get alt: %v", err)
	}
	if cTrack == oTrack {
		t.Fatal("expected distinct target params to resolve to distinct sequences")
	}
}

func TestCacheInsertRejectsDuplicateID(t *testing.T) {
	params := codec.CodecParams{SampleRate: 44100, SampleFormat: codec.SampleFormatFltPlanar, Channels: 2, SamplesPerFrame: 512}
	track := sampleTrack(params, 2, 512)
	id := NewAdId()
	c := buildTestCache(id, params, track)

	if err := c.Insert(id, []byte{0, 1, 2}); err != ErrAlreadyCached {
		t.Fatalf("expected ErrAlreadyCached, got %v", err)
	}
}

func TestCacheGetMissingIDReturnsErrNotFound(t *testing.T) {
	c := NewCache()
	params := codec.CodecParams{SampleRate: 44100, SampleFormat: codec.SampleFormatFltPlanar, Channels: 2}
	_, err := c.Get(NewAdId(), params)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
