package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// Periodic encola la importación de SCHEDULER_IMPORT_SOURCE según SCHEDULER_IMPORT_CRON.
type Periodic struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

// NewPeriodic registra la tarea periódica. cron usa la sintaxis de asynq
// ("0 3 * * *", "@every 6h").
func NewPeriodic(redisURL, queue, cron, source string, log *logger.Logger) (*Periodic, error) {
	if cron == "" || source == "" {
		return nil, fmt.Errorf("scheduler: cron y origen son obligatorios")
	}
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	task, err := NewImportTask(ImportPayload{Source: source})
	if err != nil {
		return nil, err
	}
	s := asynq.NewScheduler(opt, nil)
	id, err := s.Register(cron, task, importOptions(queueOrDefault(queue))...)
	if err != nil {
		return nil, fmt.Errorf("scheduler: registrar %q: %w", cron, err)
	}
	return &Periodic{scheduler: s, entryID: id, log: log.Component("scheduler")}, nil
}

// Run bloquea hasta que ctx se cancela.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	p.log.Info().Str("entry_id", p.entryID).Msg("importación periódica registrada")
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
