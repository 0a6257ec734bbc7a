package adlibrary

import (
	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/codec"
)

// Provider is the read surface a Planner needs: enumerate stored ad ids and
// resolve one to its resampled frame track.
type Provider interface {
	List() ([]Item, error)
	Get(id AdId, targetParams codec.CodecParams) (*[]codec.AudioFrame, error)
}

// LibraryProvider adapts a Library+Cache pair to the Provider interface.
type LibraryProvider struct {
	Library *Library
	Cache   *Cache
}

// List returns the library's stored ad ids and names.
func (p *LibraryProvider) List() ([]Item, error) {
	return p.Library.List()
}

// Get resolves id's decoded-and-resampled frames via the cache, decoding
// from the library into the cache on first touch.
func (p *LibraryProvider) Get(id AdId, targetParams codec.CodecParams) (*[]codec.AudioFrame, error) {
	track, err := p.Cache.Get(id, targetParams)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	content, err := p.Library.Content(id)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Insert(id, content); err != nil && !errors.Is(err, ErrAlreadyCached) {
		return nil, err
	}
	return p.Cache.Get(id, targetParams)
}

// Planner snapshots the set of ad ids at construction time and hands them
// out round-robin. The plan never changes after construction, per
// spec.md's "Planner... never mutates the plan after construction".
type Planner struct {
	provider     Provider
	targetParams codec.CodecParams
	plan         []AdId
	next         int
}

// NewPlanner snapshots the provider's current ad ids in a deterministic
// (library list) order and builds a round-robin planner over them.
func NewPlanner(provider Provider, targetParams codec.CodecParams) (*Planner, error) {
	items, err := provider.List()
	if err != nil {
		return nil, errors.Wrap(err, "adlibrary: snapshot ad plan")
	}
	plan := make([]AdId, len(items))
	for i, item := range items {
		plan[i] = item.ID
	}
	return &Planner{provider: provider, targetParams: targetParams, plan: plan}, nil
}

// Len returns the number of ads in the plan.
func (p *Planner) Len() int {
	return len(p.plan)
}

// Next advances the round-robin index and returns the resampled frames for
// that ad. Returns (nil, false) when the plan is empty.
func (p *Planner) Next() ([]codec.AudioFrame, bool) {
	if len(p.plan) == 0 {
		return nil, false
	}
	id := p.plan[p.next%len(p.plan)]
	p.next++

	track, err := p.provider.Get(id, p.targetParams)
	if err != nil || track == nil {
		return nil, false
	}
	return *track, true
}
