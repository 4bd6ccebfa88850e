package watermark

import (
	"context"
	"time"

	"github.com/rzbill/flake/pkg/log"
)

// Checkpointer periodically saves source() to a Store.
type Checkpointer struct {
	store    *Store
	source   func() int64
	interval time.Duration
	logger   log.Logger
}

// NewCheckpointer builds a checkpointer. A non-positive interval disables
// periodic saves, leaving only the save on exit.
func NewCheckpointer(store *Store, source func() int64, interval time.Duration, logger log.Logger) *Checkpointer {
	if logger == nil {
		logger = log.NewLogger(log.WithOutput(log.NullOutput{}))
	}
	return &Checkpointer{
		store:    store,
		source:   source,
		interval: interval,
		logger:   logger.WithComponent("watermark"),
	}
}

// Flush saves the current source value once.
func (c *Checkpointer) Flush() error {
	ms := c.source()
	wrote, err := c.store.Save(ms)
	if err != nil {
		return err
	}
	if wrote {
		c.logger.Debug("watermark saved", log.Int64("unix_ms", ms))
	}
	return nil
}

// Run saves every interval until ctx is done, then saves once more and
// returns the error of that final save.
func (c *Checkpointer) Run(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return c.Flush()
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return c.Flush()
		case <-ticker.C:
			if err := c.Flush(); err != nil {
				c.logger.Warn("watermark checkpoint failed", log.Err(err))
			}
		}
	}
}
