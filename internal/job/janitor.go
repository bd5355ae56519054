// Package job runs background housekeeping for the long-lived servers.
package job

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
)

var log = logger.WithComponent("janitor")

// Sweeper evicts idle per-client state.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically drops idle analysis services and device logins that
// were never completed.
type Janitor struct {
	tracer   trace.Tracer
	sweepers []Sweeper
	logins   storage.LoginPurger
	interval time.Duration
	now      func() time.Time
}

// NewJanitor accepts a nil purger for backends that expire logins natively.
func NewJanitor(tracer trace.Tracer, interval time.Duration, logins storage.LoginPurger, sweepers ...Sweeper) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		tracer:   tracer,
		sweepers: sweepers,
		logins:   logins,
		interval: interval,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	log.WithField("interval", j.interval).Info("janitor starting")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Janitor) RunOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "janitor.run")
	defer span.End()

	evicted := 0
	for _, s := range j.sweepers {
		evicted += s.Sweep()
	}
	span.SetAttributes(attribute.Int("janitor.evicted_clients", evicted))

	if j.logins == nil {
		return
	}
	purged, err := j.logins.PurgeExpiredLogins(ctx, j.now())
	if err != nil {
		span.RecordError(err)
		log.WithError(err).Warn("purge expired logins")
		return
	}
	span.SetAttributes(attribute.Int64("janitor.purged_logins", purged))
	if purged > 0 || evicted > 0 {
		log.WithFields(logger.Fields{"purged_logins": purged, "evicted_clients": evicted}).Debug("janitor pass")
	}
}
