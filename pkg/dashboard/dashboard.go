// Package dashboard computes the back-office overview: KPI counters, the recent-items
// lists and their display formatting.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/axsol/backoffice/pkg/core"
)

// RecentLimit is the length of every recent-items list.
const RecentLimit = 5

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

// KPIs are the dashboard counters.
type KPIs struct {
	Clients        int `json:"clients"`
	Projects       int `json:"projects"`
	ActiveProjects int `json:"active_projects"`
	Contracts      int `json:"contracts"`
}

// ClientRow is a line of the recent clients list.
type ClientRow struct {
	ID      int64  `json:"id"`
	Nombre  string `json:"nombre"`
	Empresa string `json:"empresa"`
	Fecha   string `json:"fecha"`
}

// ProjectRow is a line of the recent projects list.
type ProjectRow struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Cliente     string `json:"cliente"`
	Estado      string `json:"estado"`
	EstadoClass string `json:"estado_class"`
}

// ContractRow is a line of the recent contracts list.
type ContractRow struct {
	ID       int64  `json:"id"`
	Proyecto string `json:"proyecto"`
	Valor    string `json:"valor"`
}

// Reader is the part of the store the dashboard reads from.
type Reader interface {
	All(ctx context.Context, entity string) ([]core.Record, error)
}

// Dashboard reads the clients, projects and contracts collections.
type Dashboard struct {
	store Reader
}

// New creates a dashboard over store.
func New(store Reader) *Dashboard {
	return &Dashboard{store: store}
}

// load returns the collections in order, joining read errors. Records are always the
// degraded result of the store.
func (d *Dashboard) load(ctx context.Context, entities ...string) ([][]core.Record, error) {
	out := make([][]core.Record, len(entities))
	var errs []error
	for i, e := range entities {
		records, err := d.store.All(ctx, e)
		out[i] = records
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// KPIs counts clients, projects, active projects and contracts.
func (d *Dashboard) KPIs(ctx context.Context) (KPIs, error) {
	c, err := d.load(ctx, core.EntityClients, core.EntityProjects, core.EntityContracts)
	k := KPIs{
		Clients:   len(c[0]),
		Projects:  len(c[1]),
		Contracts: len(c[2]),
	}
	for _, p := range c[1] {
		if isActive(p) {
			k.ActiveProjects++
		}
	}
	return k, err
}

func isActive(project core.Record) bool {
	estado, _ := project["estado"].(string)
	return estado == "en_progreso" || estado == "En Progreso"
}

// RecentClients returns the newest clients by fechaCreacion.
func (d *Dashboard) RecentClients(ctx context.Context) ([]ClientRow, error) {
	c, err := d.load(ctx, core.EntityClients)
	recent := newestFirst(c[0])
	rows := make([]ClientRow, 0, len(recent))
	for _, rec := range recent {
		id, _ := rec.ID()
		rows = append(rows, ClientRow{
			ID:      id,
			Nombre:  orNA(rec["nombre"]),
			Empresa: orNA(firstNonEmpty(rec["empresa"], rec["nombre"])),
			Fecha:   FormatDate(str(rec["fechaCreacion"])),
		})
	}
	return rows, err
}

// RecentProjects returns the newest projects joined with their client name.
func (d *Dashboard) RecentProjects(ctx context.Context) ([]ProjectRow, error) {
	c, err := d.load(ctx, core.EntityProjects, core.EntityClients)
	recent := newestFirst(c[0])
	rows := make([]ProjectRow, 0, len(recent))
	for _, rec := range recent {
		id, _ := rec.ID()
		estado := str(rec["estado"])
		rows = append(rows, ProjectRow{
			ID:          id,
			Nombre:      orNA(rec["nombre"]),
			Cliente:     nameOf(c[1], rec["clienteId"]),
			Estado:      FormatEstado(estado),
			EstadoClass: EstadoClass(estado),
		})
	}
	return rows, err
}

// RecentContracts returns the first contracts in stored order joined with their
// project name and value.
func (d *Dashboard) RecentContracts(ctx context.Context) ([]ContractRow, error) {
	c, err := d.load(ctx, core.EntityContracts, core.EntityProjects)
	contracts := c[0]
	if len(contracts) > RecentLimit {
		contracts = contracts[:RecentLimit]
	}
	rows := make([]ContractRow, 0, len(contracts))
	for _, rec := range contracts {
		id, _ := rec.ID()
		valor, _ := core.Number(rec["valor"])
		rows = append(rows, ContractRow{
			ID:       id,
			Proyecto: nameOf(c[1], rec["proyectoId"]),
			Valor:    FormatCurrency(valor),
		})
	}
	return rows, err
}

// newestFirst sorts a copy of records by fechaCreacion descending, records without a
// (parseable) date last, and keeps the first RecentLimit.
func newestFirst(records []core.Record) []core.Record {
	type dated struct {
		rec core.Record
		at  time.Time
		ok  bool
	}
	items := make([]dated, len(records))
	for i, rec := range records {
		at, ok := parseDate(str(rec["fechaCreacion"]))
		items[i] = dated{rec, at, ok}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.After(b.at)
	})
	if len(items) > RecentLimit {
		items = items[:RecentLimit]
	}
	out := make([]core.Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// nameOf returns the nombre of the record whose id numerically equals id.
func nameOf(records []core.Record, id any) string {
	for _, rec := range records {
		if rec.SameID(id) {
			return orNA(rec["nombre"])
		}
	}
	return NotAvailable
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func orNA(v any) string {
	if s := str(v); s != "" {
		return s
	}
	return NotAvailable
}

func firstNonEmpty(vs ...any) any {
	for _, v := range vs {
		if !core.IsFalsy(v) {
			return v
		}
	}
	return nil
}
