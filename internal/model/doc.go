// Package model defines the core data structures used throughout urlguard.
//
// This package contains the following main types:
//   - Prediction: The result of classifying one URL
//   - BatchSummary: A condensed view of many predictions
//   - LabelInfo: What a predicted label means for the user (severity, advice)
//
// Models live in their own package because the predictor, the report writers
// and the history store all exchange them.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
