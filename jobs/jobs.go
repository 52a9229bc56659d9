package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CareSync360/notify"
	"CareSync360/services"
)

// StartMonitorScheduler runs the windowed health check on a cron schedule
// (default is daily at 00:05). The returned cron can be stopped by the caller
// on shutdown.
func StartMonitorScheduler(spec string, days int, monitor *services.Monitor, mailer *notify.Mailer, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Info().Str("schedule", spec).Msg("running scheduled appointment link check")
		RunMonitorOnce(context.Background(), days, monitor, mailer, log)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// RunMonitorOnce executes a single windowed check and, when a mailer is
// configured and issues were found, sends the summary. Mail failures are
// logged and swallowed; the check itself already succeeded.
func RunMonitorOnce(ctx context.Context, days int, monitor *services.Monitor, mailer *notify.Mailer, log zerolog.Logger) {
	stats, err := monitor.Recent(ctx, days)
	if err != nil {
		log.Error().Err(err).Msg("scheduled link check failed")
		return
	}
	log.Info().
		Int("total", stats.Total).
		Int("valid", stats.Valid).
		Int("issues", stats.Issues).
		Msg("scheduled link check finished")

	if stats.Issues > 0 && mailer.Enabled() {
		if err := mailer.SendMonitorSummary(stats); err != nil {
			log.Error().Err(err).Msg("sending monitor summary mail")
		}
	}
}
