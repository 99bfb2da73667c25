package main

import (
	"errors"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/domain"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitRowErrors  = 5
	exitSession    = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode código de salida de un error. Un fallo de sesión o una entrada inválida
// se reconocen aunque el comando no los haya marcado.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var se *importer.SessionError
	if errors.As(err, &se) {
		return exitSession
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return exitValidation
	}
	return 1
}
