package worker

// retry_cron.go
// Background goroutine that periodically replays dead-lettered jobs once the
// SMTP circuit breaker is no longer open, so closing reports queued during an
// outage still reach the supervisor.

import (
	"context"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds the dependencies for the redrive goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// redrives DLQ entries back onto their queues. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRedrives(ctx, cfg)
			}
		}
	}()
}

func processRedrives(ctx context.Context, cfg RetryCronConfig) {
	// If the breaker is open the relay is still down — a redrive would only
	// bounce the jobs straight back to the DLQ.
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	for _, queue := range []string{QueueClosingReport, QueueEmail} {
		n, err := RedriveDLQ(ctx, cfg.RDB, queue, retryBatchSize)
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry_cron: redrive failed")
			continue
		}
		if n > 0 {
			log.Info().Int("count", n).Str("queue", queue).Msg("retry_cron: jobs redriven")
		}
	}
}
