package dto

import "time"

// ImportRequest opciones del formulario de carga masiva.
type ImportRequest struct {
	Charset  string `form:"charset" validate:"omitempty,oneof=utf-8 utf8 latin1 auto"`
	SkipRows int    `form:"skip_rows" validate:"min=0,max=1000"`
}

// ImportIssueResponse error o advertencia de una fila.
type ImportIssueResponse struct {
	Line    int    `json:"linea"`
	Field   string `json:"campo,omitempty"`
	Message string `json:"mensaje"`
}

// ImportResponse resumen de una sesión de importación.
type ImportResponse struct {
	SessionID   string                `json:"sesion_id"`
	Source      string                `json:"origen"`
	Outcome     string                `json:"resultado"`
	StartedAt   time.Time             `json:"inicio"`
	FinishedAt  time.Time             `json:"fin"`
	Total       int                   `json:"total"`
	Created     int                   `json:"creadas"`
	Updated     int                   `json:"actualizadas"`
	Skipped     int                   `json:"omitidas"`
	Failed      int                   `json:"fallidas"`
	Interrupted bool                  `json:"interrumpida"`
	Errors      []ImportIssueResponse `json:"errores"`
	Warnings    []ImportIssueResponse `json:"advertencias"`
}
