package classifier

import (
	"os"

	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/codec"
)

// WindowSamples is the fixed classifier input width: 975ms at 16kHz mono.
const WindowSamples = 15_600

// Classifier is the single opaque-model boundary spec.md requires: a
// function from a 975ms 16kHz mono int16 window to a 3-class probability
// row. Implementations may batch internally but must expose this
// single-window call.
type Classifier interface {
	Predict(window [WindowSamples]int16) (codec.PredictedLabels, error)
}

// FileLoader loads an opaque model artifact from a filesystem path at
// process start. The artifact's internal format is not interpreted here;
// spec.md treats the model as opaque, and no example repo in the pack
// carries a model-serving runtime to ground a concrete one on.
type FileLoader struct {
	path string
	data []byte
}

// Load reads the model artifact bytes from path without interpreting them.
func Load(path string) (*FileLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "classifier: load artifact %s", path)
	}
	return &FileLoader{path: path, data: data}, nil
}

// Path returns the filesystem path the artifact was loaded from.
func (f *FileLoader) Path() string {
	return f.path
}

// Size returns the loaded artifact's byte length.
func (f *FileLoader) Size() int {
	return len(f.data)
}

// ErrNoRuntime is returned by FileLoader.Predict: the artifact's bytes are
// loaded but nothing in this deployment knows how to run them. Wire a real
// Classifier (an inference runtime for whatever format the artifact is in)
// and pass that to the analyzer instead of FileLoader directly.
var ErrNoRuntime = errors.New("classifier: model artifact loaded but no inference runtime is wired")

// Predict implements Classifier as a placeholder so FileLoader satisfies
// the interface end-to-end; every call fails with ErrNoRuntime until a real
// runtime is substituted.
func (f *FileLoader) Predict([WindowSamples]int16) (codec.PredictedLabels, error) {
	return codec.PredictedLabels{}, ErrNoRuntime
}
