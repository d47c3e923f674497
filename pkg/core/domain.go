// Package core holds the entity store and the contracts its collaborators implement.
package core

import (
	"fmt"
	"time"
)

// Entity names of the back-office. The set is closed: the CLI and Seed operate on it.
const (
	EntityClients      = "clients"
	EntityProjects     = "projects"
	EntityContracts    = "contracts"
	EntityOrders       = "orders"
	EntityEstimates    = "estimates"
	EntityWorkOrders   = "work-orders"
	EntityAssets       = "assets"
	EntityInspections  = "inspections"
	EntityDeliverables = "deliverables"
	EntityValidations  = "validations"
)

// Entities returns the closed set of entity names in display order.
func Entities() []string {
	return []string{
		EntityClients, EntityProjects, EntityContracts, EntityOrders, EntityEstimates,
		EntityWorkOrders, EntityAssets, EntityInspections, EntityDeliverables, EntityValidations,
	}
}

// IsEntity reports whether name belongs to the closed entity set.
func IsEntity(name string) bool {
	for _, e := range Entities() {
		if e == name {
			return true
		}
	}
	return false
}

// EventType represents the type of change observed in a storage backend.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a persisted entity collection.
type Event struct {
	Type      EventType
	Entity    string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s", e.Type, e.Entity, time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}
