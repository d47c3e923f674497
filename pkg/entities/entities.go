// Package entities defines typed records for the collections the dashboard reads.
// JSON tags keep the persisted (Spanish) field names.
package entities

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/axsol/backoffice/pkg/core"
)

// Client is a record of the clients collection.
type Client struct {
	ID            int64  `json:"id,omitempty"`
	Nombre        string `json:"nombre,omitempty"`
	Contacto      string `json:"contacto,omitempty"`
	Email         string `json:"email,omitempty"`
	Estado        string `json:"estado,omitempty"`
	FechaCreacion string `json:"fechaCreacion,omitempty"`
}

// Project is a record of the projects collection.
type Project struct {
	ID            int64  `json:"id,omitempty"`
	Nombre        string `json:"nombre,omitempty"`
	ClienteID     int64  `json:"clienteId,omitempty"`
	Ubicacion     string `json:"ubicacion,omitempty"`
	FechaInicio   string `json:"fechaInicio,omitempty"`
	FechaCreacion string `json:"fechaCreacion,omitempty"`
	Estado        string `json:"estado,omitempty"`
}

// Contract is a record of the contracts collection.
type Contract struct {
	ID           int64    `json:"id,omitempty"`
	Codigo       string   `json:"codigo,omitempty"`
	ProyectoID   int64    `json:"proyectoId,omitempty"`
	ClienteID    int64    `json:"clienteId,omitempty"`
	FechaInicio  string   `json:"fechaInicio,omitempty"`
	FechaFin     string   `json:"fechaFin,omitempty"`
	TipoServicio string   `json:"tipoServicio,omitempty"`
	Frecuencia   string   `json:"frecuencia,omitempty"`
	Tarifas      []string `json:"tarifas,omitempty"`
	Valor        float64  `json:"valor,omitempty"`
	Estado       string   `json:"estado,omitempty"`
}

// ErrInvalidRecord reports a record whose fields do not fit its typed shape.
var ErrInvalidRecord = errors.New("invalid record")

var typed = map[string]func() any{
	core.EntityClients:   func() any { return new(Client) },
	core.EntityProjects:  func() any { return new(Project) },
	core.EntityContracts: func() any { return new(Contract) },
}

// IsTyped reports whether entity has a typed record.
func IsTyped(entity string) bool {
	_, ok := typed[entity]
	return ok
}

// Validate checks that the known fields of rec have the types of the entity's typed
// record. Unknown fields and untyped entities are accepted as-is.
func Validate(entity string, rec core.Record) error {
	newRecord, ok := typed[entity]
	if !ok {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", entity, ErrInvalidRecord, err)
	}
	if err := json.Unmarshal(data, newRecord()); err != nil {
		return fmt.Errorf("%s: %w: %w", entity, ErrInvalidRecord, err)
	}
	return nil
}
