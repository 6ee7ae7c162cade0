package maintenance

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/wavefeed/wavefeed-be/internal/services"
)

// Pruner trims old activity log entries on a daily schedule. It never
// touches users or posts.
type Pruner struct {
	activitySvc   services.ActivityServiceProvider
	retentionDays int
	cron          *cron.Cron
}

// NewPruner creates a pruner keeping the given number of days of
// activity history.
func NewPruner(activitySvc services.ActivityServiceProvider, retentionDays int) *Pruner {
	return &Pruner{
		activitySvc:   activitySvc,
		retentionDays: retentionDays,
		cron:          cron.New(),
	}
}

// Start schedules the daily prune job.
func (p *Pruner) Start() error {
	if _, err := p.cron.AddFunc("@daily", p.prune); err != nil {
		return err
	}
	p.cron.Start()
	log.Info().Int("retention_days", p.retentionDays).Msg("Activity pruner started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (p *Pruner) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Pruner) prune() {
	cutoff := time.Now().UTC().AddDate(0, 0, -p.retentionDays)
	pruned, err := p.activitySvc.Prune(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune activity log")
		return
	}
	if pruned > 0 {
		log.Info().Int64("pruned", pruned).Time("cutoff", cutoff).Msg("Pruned activity log")
	}
}
