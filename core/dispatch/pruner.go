package dispatch

import (
	"context"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/util/desensitize"
	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
)

// Pruner deletes subscriptions the push service reported as gone.
type Pruner struct {
	store  push.SubscriptionStore
	logger *log.Logger
}

// NewPruner creates a Pruner on store. A nil logger means log.G.
func NewPruner(store push.SubscriptionStore, logger *log.Logger) *Pruner {
	if logger == nil {
		logger = log.G
	}
	return &Pruner{store: store, logger: logger}
}

func (p *Pruner) Consume(ctx context.Context, reports []*push.Report) error {
	var errs []error
	for _, r := range reports {
		if r == nil || !r.Expired {
			continue
		}
		if err := p.store.Delete(ctx, r.Endpoint); err != nil {
			errs = append(errs, err)
			continue
		}
		p.logger.Info().Str("endpoint", desensitize.Endpoint(r.Endpoint, 6)).Msg("expired subscription pruned")
	}
	return errors.Join(errs...)
}
