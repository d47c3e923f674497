package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/entities"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		rec     core.Record
		wantErr bool
	}{
		{"client ok", core.EntityClients, core.Record{"nombre": "Solar", "estado": "Activo"}, false},
		{"unknown fields kept", core.EntityClients, core.Record{"nombre": "Solar", "sector": "agro"}, false},
		{"client nombre not a string", core.EntityClients, core.Record{"nombre": 5}, true},
		{"project clienteId not a number", core.EntityProjects, core.Record{"clienteId": "uno"}, true},
		{"contract tarifas not a list", core.EntityContracts, core.Record{"tarifas": "mensual"}, true},
		{"contract valor ok", core.EntityContracts, core.Record{"valor": 15000.5}, false},
		{"untyped entity", core.EntityAssets, core.Record{"nombre": 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := entities.Validate(tt.entity, tt.rec)
			if tt.wantErr {
				assert.ErrorIs(t, err, entities.ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsTyped(t *testing.T) {
	assert.True(t, entities.IsTyped(core.EntityClients))
	assert.True(t, entities.IsTyped(core.EntityContracts))
	assert.False(t, entities.IsTyped(core.EntityOrders))
}
