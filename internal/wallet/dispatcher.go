package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxAttempts = 3
	defaultConcurrency = 8
	defaultBackoff     = 100 * time.Millisecond
)

// Dispatcher executes intents with bounded concurrency. Transient failures
// are retried with a linear backoff; errors the wallet classified (like
// insufficient funds) are final.
type Dispatcher struct {
	wallet      Wallet
	logger      *zap.Logger
	maxAttempts int
	backoff     time.Duration
	concurrency int
}

func NewDispatcher(w Wallet, logger *zap.Logger, maxAttempts int) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Dispatcher{
		wallet:      w,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoff:     defaultBackoff,
		concurrency: defaultConcurrency,
	}
}

// WithBackoff sets the delay unit between attempts.
func (d *Dispatcher) WithBackoff(backoff time.Duration) *Dispatcher {
	d.backoff = backoff
	return d
}

// Execute runs one intent and reports its final outcome.
func (d *Dispatcher) Execute(ctx context.Context, in Intent) error {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err = apply(ctx, d.wallet, in)
		if err == nil {
			return nil
		}
		if apperr.KindOf(err) != apperr.KindInternal {
			return err
		}

		d.logger.Warn("wallet call failed",
			zap.Stringer("key", in.Key),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.backoff * time.Duration(attempt)):
		}
	}
	return err
}

// Dispatch runs every intent and joins the failures. One failing intent does
// not stop the others.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) error {
	if len(intents) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	errs := make([]error, len(intents))
	for i, in := range intents {
		i, in := i, in
		g.Go(func() error {
			if err := d.Execute(ctx, in); err != nil {
				d.logger.Error("wallet intent dropped",
					zap.Stringer("key", in.Key),
					zap.String("kind", string(in.Kind)),
					zap.Int64("amount", in.Amount),
					zap.Error(err),
				)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
