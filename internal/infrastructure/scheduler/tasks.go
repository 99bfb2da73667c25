package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskImportCSV importa un CSV desde almacenamiento de objetos o disco.
const TaskImportCSV = "import:csv"

// ImportPayload datos de la tarea. Charset y SkipRows vacíos usan IMPORT_*.
type ImportPayload struct {
	Source   string `json:"source"`
	Charset  string `json:"charset,omitempty"`
	SkipRows *int   `json:"skipRows,omitempty"`
}

func NewImportTask(payload ImportPayload) (*asynq.Task, error) {
	if payload.Source == "" {
		return nil, fmt.Errorf("scheduler: origen vacío")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImportCSV, data), nil
}

func ParseImportPayload(task *asynq.Task) (ImportPayload, error) {
	var payload ImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ImportPayload{}, err
	}
	return payload, nil
}
