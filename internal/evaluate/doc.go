// Package evaluate computes classification metrics for a labeled URL set:
// accuracy, support-weighted F1, one-vs-rest ROC AUC and the confusion matrix.
package evaluate
