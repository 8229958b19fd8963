package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const renewalTickInterval = 1 * time.Hour

// LinkRenewer rolls expired auto-renew links over to their pending cost
// table version. Satisfied by service.LinkService.
type LinkRenewer interface {
	RenewExpired(ctx context.Context, now time.Time) (int, error)
}

// StartRenewalCron launches a background goroutine that ticks hourly and
// applies pending cost table versions to auto-renew links whose validity
// window has closed. Respects the context for graceful shutdown.
func StartRenewalCron(ctx context.Context, renewer LinkRenewer) {
	go func() {
		ticker := time.NewTicker(renewalTickInterval)
		defer ticker.Stop()

		log.Info().Msg("renewal_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("renewal_cron: shutting down")
				return
			case <-ticker.C:
				n, err := renewer.RenewExpired(ctx, time.Now())
				if err != nil {
					log.Error().Err(err).Msg("renewal_cron: pass failed")
					continue
				}
				if n > 0 {
					log.Info().Int("renewed", n).Msg("renewal_cron: links rolled over")
				}
			}
		}
	}()
}
