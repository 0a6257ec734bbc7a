package classifier

import "github.com/streamshift/adrestreamer/internal/codec"

// FuncClassifier adapts a plain function to the Classifier interface, used
// by tests to stub classifier behavior without a real model artifact.
type FuncClassifier func(window [WindowSamples]int16) (codec.PredictedLabels, error)

// Predict implements Classifier.
func (f FuncClassifier) Predict(window [WindowSamples]int16) (codec.PredictedLabels, error) {
	return f(window)
}

// Constant returns a Classifier that always predicts kind with probability 1.
func Constant(kind codec.ContentKind) Classifier {
	var row codec.PredictedLabels
	switch kind {
	case codec.KindAdvertisement:
		row = codec.PredictedLabels{1, 0, 0}
	case codec.KindMusic:
		row = codec.PredictedLabels{0, 1, 0}
	case codec.KindTalk:
		row = codec.PredictedLabels{0, 0, 1}
	default:
		row = codec.PredictedLabels{0, 1, 0}
	}
	return FuncClassifier(func([WindowSamples]int16) (codec.PredictedLabels, error) {
		return row, nil
	})
}
