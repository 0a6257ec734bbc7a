package analyzer

import (
	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/classifier"
	"github.com/streamshift/adrestreamer/internal/codec"
	"github.com/streamshift/adrestreamer/utils/errorx"
)

// ProcessedFrame pairs a decoded frame with the classification applied to
// its position in the stream.
type ProcessedFrame struct {
	Kind  codec.ContentKind
	Frame codec.AudioFrame
}

// ErrDisconnected signals a channel in the analyzer pipeline was closed,
// fatal to the request per spec.md §4.3's "Failure" note.
var ErrDisconnected = errors.New("analyzer: processing channel disconnected")

// BufferedAnalyzer accumulates resampled samples into fixed classifier
// windows on a dedicated worker goroutine and correlates predictions back
// to the original decoded frames, grounded on the original
// BufferedAnalyzer/processing_worker pair.
type BufferedAnalyzer struct {
	frameCh     chan codec.AudioFrame
	processedCh chan []ProcessedFrame
	done        chan struct{}

	outputQueue []ProcessedFrame
}

// New starts the processing worker and returns a façade for per-frame push.
func New(model classifier.Classifier, smoother *LabelSmoother) *BufferedAnalyzer {
	a := &BufferedAnalyzer{
		frameCh:     make(chan codec.AudioFrame, 32),
		processedCh: make(chan []ProcessedFrame, 32),
		done:        make(chan struct{}),
	}

	errorx.Go(func() {
		defer close(a.processedCh)
		a.processingWorker(model, smoother)
	})

	return a
}

// Push enqueues frame for classification and non-blockingly drains whatever
// the worker has already produced, returning at most one ready pair.
func (a *BufferedAnalyzer) Push(frame codec.AudioFrame) (ProcessedFrame, bool, error) {
	select {
	case a.frameCh <- frame:
	case <-a.done:
		return ProcessedFrame{}, false, ErrDisconnected
	}

	select {
	case batch, ok := <-a.processedCh:
		if !ok {
			close(a.done)
			return ProcessedFrame{}, false, ErrDisconnected
		}
		a.outputQueue = append(a.outputQueue, batch...)
	default:
	}

	if len(a.outputQueue) == 0 {
		return ProcessedFrame{}, false, nil
	}
	out := a.outputQueue[0]
	a.outputQueue = a.outputQueue[1:]
	return out, true, nil
}

// Close signals end-of-input to the processing worker.
func (a *BufferedAnalyzer) Close() {
	close(a.frameCh)
}

func (a *BufferedAnalyzer) processingWorker(model classifier.Classifier, smoother *LabelSmoother) {
	var samplesQueue []int16
	var inputQueue []codec.AudioFrame
	resampler := &classifierResampler{}
	defer resampler.close()

	for frame := range a.frameCh {
		inputQueue = append(inputQueue, frame)

		mono, err := resampler.push(frame)
		if err != nil {
			return
		}
		samplesQueue = append(samplesQueue, mono...)

		for len(samplesQueue) >= classifier.WindowSamples {
			var window [classifier.WindowSamples]int16
			copy(window[:], samplesQueue[:classifier.WindowSamples])

			samplesQueue = append(samplesQueue[:0:0], samplesQueue[DrainWidth:]...)

			prediction, err := model.Predict(window)
			if err != nil {
				return
			}

			smoothed, ok := smoother.Push(prediction)
			if !ok {
				continue
			}
			kind := smoothed.ArgMax()

			framesToDrain := 0
			var acc codec.Timestamp
			for _, f := range inputQueue {
				acc += f.Duration()
				if acc >= codec.Timestamp(DrainDuration.Microseconds()) {
					break
				}
				framesToDrain++
			}

			batch := make([]ProcessedFrame, 0, framesToDrain)
			for i := 0; i < framesToDrain; i++ {
				batch = append(batch, ProcessedFrame{Kind: kind, Frame: inputQueue[i]})
			}
			inputQueue = inputQueue[framesToDrain:]

			a.processedCh <- batch
		}
	}
}

// DrainWidth is the number of 16kHz mono samples consumed ("forward") per
// classifier invocation (100ms at 16kHz).
const DrainWidth = 1_600
