package adlibrary

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/streamshift/adrestreamer/internal/codec"
	"github.com/streamshift/adrestreamer/utils/errorx"
)

// workingParams is the fixed PCM shape ad clips are decoded into once, on
// insert. get() later resamples from this shape to whatever a request needs.
var workingParams = codec.CodecParams{
	SampleRate:   48_000,
	SampleFormat: codec.SampleFormatFlt,
	Channels:     2,
}

type trackCacheItem struct {
	params codec.CodecParams
	track  []codec.AudioFrame
}

type resampledKey struct {
	id     AdId
	params codec.CodecParams
}

// ErrAlreadyCached is returned by Insert when id is already present.
var ErrAlreadyCached = errors.New("adlibrary: ad already decoded")

// Cache is the thread-safe mapping from ad id to decoded frames, plus the
// secondary (ad_id, target_params) -> shared resampled frames mapping, per
// spec.md's "Ad cache and planner" section. Decoding happens once per id;
// resampling happens once per (id, target_params) pair and the result is
// shared across callers.
type Cache struct {
	mu     sync.RWMutex
	tracks map[AdId]trackCacheItem

	resampledMu sync.RWMutex
	resampled   map[resampledKey]*[]codec.AudioFrame

	group singleflight.Group
}

// NewCache builds an empty ad cache.
func NewCache() *Cache {
	return &Cache{
		tracks:    make(map[AdId]trackCacheItem),
		resampled: make(map[resampledKey]*[]codec.AudioFrame),
	}
}

// Insert decodes encoded bytes once under id. Fails if id is already cached.
func (c *Cache) Insert(id AdId, encoded []byte) error {
	c.mu.Lock()
	if _, exists := c.tracks[id]; exists {
		c.mu.Unlock()
		return ErrAlreadyCached
	}
	c.mu.Unlock()

	params, track, err := decodeTrack(encoded)
	if err != nil {
		return errors.Wrapf(err, "adlibrary: decode ad %s", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tracks[id]; exists {
		return ErrAlreadyCached
	}
	c.tracks[id] = trackCacheItem{params: params, track: track}
	return nil
}

// Get returns the frames for id resampled to targetParams, sharing the
// result across all callers asking for the same (id, targetParams) pair.
// Resampling errors are fatal to the call but never corrupt the cache: a
// failed resample is not memoized.
func (c *Cache) Get(id AdId, targetParams codec.CodecParams) (*[]codec.AudioFrame, error) {
	key := resampledKey{id: id, params: targetParams}

	c.resampledMu.RLock()
	if track, ok := c.resampled[key]; ok {
		c.resampledMu.RUnlock()
		return track, nil
	}
	c.resampledMu.RUnlock()

	c.mu.RLock()
	item, ok := c.tracks[id]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	result, err, _ := c.group.Do(keyString(key), func() (any, error) {
		c.resampledMu.Lock()
		if track, ok := c.resampled[key]; ok {
			c.resampledMu.Unlock()
			return track, nil
		}
		c.resampledMu.Unlock()

		resampled, err := resampleTrack(item.params, targetParams, item.track)
		if err != nil {
			return nil, err
		}

		c.resampledMu.Lock()
		defer c.resampledMu.Unlock()
		if track, ok := c.resampled[key]; ok {
			return track, nil
		}
		c.resampled[key] = &resampled
		return &resampled, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "adlibrary: resample ad %s", id)
	}
	return result.(*[]codec.AudioFrame), nil
}

func keyString(k resampledKey) string {
	return fmt.Sprintf("%s|%s|%d|%d|%d|%d",
		k.id.String(), k.params.SampleFormat, k.params.SampleRate,
		k.params.Channels, k.params.BitRate, k.params.SamplesPerFrame)
}

func decodeTrack(content []byte) (codec.CodecParams, []codec.AudioFrame, error) {
	params := workingParams
	dec, err := codec.NewDecoder(params, 1024)
	if err != nil {
		return params, nil, err
	}
	defer dec.Close()

	if err := dec.PushPacket(codec.Packet{Data: content}); err != nil {
		return params, nil, err
	}
	if err := dec.Flush(); err != nil {
		return params, nil, err
	}

	var frames []codec.AudioFrame
	for {
		frame, ok, err := dec.NextFrame()
		if err != nil {
			return params, nil, err
		}
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	if len(frames) > 0 {
		params = params.WithSamplesPerFrame(frames[0].Samples)
	}
	return params, frames, nil
}

func resampleTrack(source, target codec.CodecParams, track []codec.AudioFrame) ([]codec.AudioFrame, error) {
	if source.CompatibleForDirectPush(target) {
		out := make([]codec.AudioFrame, len(track))
		copy(out, track)
		return out, nil
	}

	frameSamples := target.SamplesPerFrame
	if frameSamples <= 0 {
		frameSamples = source.SamplesPerFrame
	}
	if frameSamples <= 0 {
		frameSamples = 1024
	}

	resampler, err := codec.NewResampler(source, target, frameSamples)
	if err != nil {
		return nil, err
	}
	defer resampler.Close()

	pushErrCh := make(chan error, 1)
	errorx.Go(func() {
		for _, frame := range track {
			if err := resampler.Push(frame); err != nil {
				pushErrCh <- err
				return
			}
		}
		pushErrCh <- resampler.Flush()
	})

	var out []codec.AudioFrame
	for {
		frame, ok, err := resampler.NextFrame()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, frame)
	}
	if err := <-pushErrCh; err != nil {
		return nil, err
	}
	return out, nil
}
