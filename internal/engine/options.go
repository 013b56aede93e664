package engine

import (
	"go.uber.org/zap"

	"github.com/willwagner/markupeditor/internal/config"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger installs a logger. The default is a no-op logger, so an
// embedding host pays nothing for logging it did not ask for.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithConfig applies host settings.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}
