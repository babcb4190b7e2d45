package scoring

import "github.com/okian/fairway/pkg/logger"

// Option applies a configuration option to the ModelScorer.
type Option func(*ModelScorer)

// WithLogger sets a custom logger for the scorer.
func WithLogger(l logger.Logger) Option {
	return func(s *ModelScorer) {
		if l != nil {
			s.logger = l
		}
	}
}
