package payments

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lncalendar/lncalendar/lightning"
)

// Listener consumes the host's paid-invoice stream and drives the unpaid→paid
// transition. It runs for the lifetime of the process: a failure handling one
// event is logged, backed off, and must never stop the loop.
type Listener struct {
	svc     *Service
	backoff time.Duration
}

func NewListener(svc *Service) *Listener {
	return &Listener{svc: svc, backoff: time.Second}
}

// Run blocks until ctx is cancelled or the payment stream closes.
func (l *Listener) Run(ctx context.Context) {
	log.Info().Msg("payment listener started")
	payments := l.svc.ln.PaidInvoices(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("payment listener stopped")
			return
		case payment, ok := <-payments:
			if !ok {
				log.Info().Msg("payment stream closed, listener exiting")
				return
			}
			l.handle(ctx, &payment)
		}
	}
}

func (l *Listener) handle(ctx context.Context, payment *lightning.Payment) {
	if payment.Tag() != PaymentTag {
		// Not one of ours.
		return
	}

	if err := l.svc.Confirm(ctx, payment); err != nil {
		log.Error().Err(err).Str("payment_hash", payment.PaymentHash).Msg("error processing invoice")
		select {
		case <-time.After(l.backoff):
		case <-ctx.Done():
		}
	}
}
