package importer

import "time"

// Outcome resultado global de una sesión.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
	OutcomeAborted Outcome = "aborted" // fallo de sesión, solo para métricas
)

// Issue error o advertencia de una fila, con su número de línea en el archivo.
type Issue struct {
	Line    int
	Field   string
	Message string
}

// Summary resumen de una sesión de importación.
type Summary struct {
	SessionID   string
	Source      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Total       int
	Created     int
	Updated     int
	Skipped     int
	Failed      int
	Errors      []Issue
	Warnings    []Issue
	Interrupted bool
}

// Outcome success si no hubo errores, partial si hubo errores y al menos una fila se aplicó,
// failure si ninguna fila se aplicó.
func (s *Summary) Outcome() Outcome {
	if len(s.Errors) == 0 && !s.Interrupted {
		return OutcomeSuccess
	}
	if s.Created+s.Updated > 0 {
		return OutcomePartial
	}
	return OutcomeFailure
}
