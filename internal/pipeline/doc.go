// Package pipeline runs URL predictions as a sequence of steps.
//
// A single prediction goes through length checking, feature extraction,
// classification, registered domain lookup and, optionally, saving to the
// history store. Each stage is implemented as a Step that receives the
// prediction and fills in its part.
//
// BatchPredictor runs predictions for many URLs concurrently with errgroup.
// Results keep the input order, and a failed URL never stops the others.
package pipeline
