package dashboard

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var estadoLabels = map[string]string{
	"pendiente":   "Pendiente",
	"en_progreso": "En Progreso",
	"completado":  "Completado",
	"aprobado":    "Aprobado",
	"rechazado":   "Rechazado",
	"activo":      "Activo",
	"entregado":   "Entregado",
	"pagado":      "Pagado",
}

// FormatEstado maps a status code to its label. Unknown codes pass through.
func FormatEstado(estado string) string {
	if label, ok := estadoLabels[estado]; ok {
		return label
	}
	return estado
}

// EstadoClass derives the badge class of a status: first space to dash, lowercased.
func EstadoClass(estado string) string {
	return strings.ToLower(strings.Replace(estado, " ", "-", 1))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders an ISO date as dd/mm/yyyy, or N/A when empty or unparseable.
func FormatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return NotAvailable
	}
	return t.Format("02/01/2006")
}

// minGroupingAmount is the smallest amount Spanish formatting groups by thousands:
// "1234,50 €" but "12.345,50 €".
const minGroupingAmount = 10000

// FormatCurrency renders an amount in euros with Spanish separators, e.g. "12.345,50 €".
func FormatCurrency(v float64) string {
	p := message.NewPrinter(language.Spanish)
	if math.Abs(v) < minGroupingAmount {
		return p.Sprint(number.Decimal(v, number.Scale(2), number.NoSeparator())) + " €"
	}
	return p.Sprintf("%.2f", v) + " €"
}
