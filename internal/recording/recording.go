// Package recording optionally tees a request's pre-mixer and post-mixer
// PCM to disk for offline review. It is pure diagnostics: the server never
// reads these files back.
package recording

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/streamshift/adrestreamer/internal/codec"
	"github.com/pkg/errors"
)

// Destination names which of a request's two PCM streams a frame belongs
// to.
type Destination int

const (
	Original Destination = iota
	Processed
)

func (d Destination) suffix() string {
	if d == Processed {
		return "processed"
	}
	return "original"
}

type sidecar struct {
	RequestID string           `json:"requestId"`
	StartedAt time.Time        `json:"startedAt"`
	Params    codec.CodecParams `json:"codecParams"`
}

// Recorder tees raw PCM for both streams of a single request plus a JSON
// sidecar describing the codec params in effect.
type Recorder struct {
	original  *os.File
	processed *os.File
}

// New creates the recorder's files under dir, named
// "<timestamp>-<requestID>-{original,processed}.pcm", alongside a JSON
// sidecar with the same prefix.
func New(dir, requestID string, params codec.CodecParams) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "recording: create directory")
	}

	startedAt := time.Now().UTC()
	prefix := fmt.Sprintf("%s-%s", startedAt.Format("20060102-150405"), requestID)

	original, err := os.Create(filepath.Join(dir, prefix+"-"+Original.suffix()+".pcm"))
	if err != nil {
		return nil, errors.Wrap(err, "recording: create original file")
	}
	processed, err := os.Create(filepath.Join(dir, prefix+"-"+Processed.suffix()+".pcm"))
	if err != nil {
		original.Close()
		return nil, errors.Wrap(err, "recording: create processed file")
	}

	meta := sidecar{RequestID: requestID, StartedAt: startedAt, Params: params}
	if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dir, prefix+".json"), data, 0644)
	}

	return &Recorder{original: original, processed: processed}, nil
}

// Push appends one frame's raw samples to the named destination. Write
// failures are diagnostics-only and never propagate to the request
// pipeline.
func (r *Recorder) Push(dest Destination, frame codec.AudioFrame) {
	f := r.original
	if dest == Processed {
		f = r.processed
	}
	for _, plane := range frame.Planes {
		if _, err := f.Write(plane); err != nil {
			return
		}
	}
}

// Close flushes and closes both files.
func (r *Recorder) Close() {
	r.original.Close()
	r.processed.Close()
}
