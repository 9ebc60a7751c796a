// Package predictor is the entry point for classifying a single URL.
//
// PredictURL loads (and caches) a model artifact, extracts the URL's
// features, projects them into the model's column order, and returns the
// predicted label. Predictor keeps one loaded model and returns the full
// model.Prediction, including class probabilities, for callers that need
// more than the label.
//
// A Predictor never writes after construction, so one instance may serve
// any number of goroutines.
package predictor
