package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/urlguard/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs predicted at the same time when
// WithConcurrency is not given.
const DefaultConcurrency = 8

// URLPredictor predicts the label of a single URL.
// Implementations must be safe for concurrent use.
type URLPredictor interface {
	PredictContext(ctx context.Context, rawURL string) (*model.Prediction, error)
}

// BatchPredictor handles concurrent prediction of many URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchPredictor struct {
	predictor URLPredictor

	// concurrency is the maximum number of concurrent predictions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchPredictor.
type BatchOption func(*BatchPredictor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchPredictor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent predictions.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchPredictor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchPredictor creates a new BatchPredictor around predictor.
func NewBatchPredictor(predictor URLPredictor, opts ...BatchOption) *BatchPredictor {
	bp := &BatchPredictor{
		predictor:   predictor,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// PredictAll predicts every URL, at most concurrency at a time.
//
// The returned slice has one entry per URL, in input order. A URL that
// fails gets a prediction with Error set; it never stops the batch. The
// error return is only non-nil when ctx is cancelled, in which case URLs
// that were not started have a nil entry.
func (bp *BatchPredictor) PredictAll(ctx context.Context, urls []string) ([]*model.Prediction, error) {
	bp.logger.Debug("starting batch prediction",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.Prediction, len(urls))

	err := bp.run(ctx, urls, func(prediction *model.Prediction, index int) {
		results[index] = prediction
	})

	bp.logger.Debug("batch prediction complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// PredictAllWithCallback predicts every URL and calls callback for each
// finished prediction. This is useful for streaming results.
//
// The callback receives the prediction and the index of the URL in the
// original slice. It is called from worker goroutines, so it must be
// safe for concurrent use.
func (bp *BatchPredictor) PredictAllWithCallback(
	ctx context.Context,
	urls []string,
	callback func(prediction *model.Prediction, index int),
) error {
	return bp.run(ctx, urls, callback)
}

func (bp *BatchPredictor) run(ctx context.Context, urls []string, callback func(*model.Prediction, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			prediction, err := bp.predictor.PredictContext(ctx, rawURL)
			if prediction == nil {
				prediction = &model.Prediction{URL: rawURL}
			}
			if err != nil {
				bp.logger.Debug("prediction failed",
					"url", rawURL,
					"error", err,
				)
				if prediction.Error == "" {
					prediction.Error = err.Error()
				}
			}

			callback(prediction, i)
			return nil
		})
	}

	return g.Wait()
}
