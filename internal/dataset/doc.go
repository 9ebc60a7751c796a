// Package dataset prepares labeled URL datasets for training.
//
// It is used offline only. The typical flow is:
//
//	samples, _ := dataset.ReadCSV(f)           // url,type rows
//	table := dataset.BuildTable(samples)       // features.Extract per URL
//	table, _ = dataset.ClipOutliersIQR(table, 1.5)
//	table, _ = dataset.Balance(table, dataset.StrategyUndersample, 42)
//	_ = dataset.WriteCSV(out, table)
//
// BuildTable uses the same extractor as prediction, so a model trained on
// the written table sees the same features at inference time. Clipping and
// balancing change the training data only; they never run per URL.
package dataset
