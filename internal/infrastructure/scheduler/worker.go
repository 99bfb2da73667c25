package scheduler

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// Worker servidor asynq con concurrencia 1: dos importaciones nunca se solapan.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(redisURL, queue string, h *ImportHandler, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			queueOrDefault(queue): 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(TaskImportCSV, h)

	return &Worker{server: server, mux: mux, log: log.Component("scheduler")}, nil
}

// Run bloquea hasta que ctx se cancela.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.log.Info().Msg("worker iniciado")
	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info().Msg("worker detenido")
	return nil
}
