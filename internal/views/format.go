// internal/views/format.go
package views

import (
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// money renders an amount with thousands separators and at most three
// fraction digits, e.g. $1,234.5.
func money(d decimal.Decimal) string {
	d = d.Round(3)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	f, _ := d.Abs().Float64()
	return sign + "$" + humanize.Commaf(f)
}

// newTable writes aligned, borderless columns to w. Rows are buffered
// until Render.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	if len(header) > 0 {
		t.SetHeader(header)
		t.SetAutoFormatHeaders(false)
		t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		t.SetHeaderLine(false)
	}
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	return t
}

// day renders an ISO timestamp as "Mar 1, 2024"; anything else is shown
// as received.
func day(iso string) string {
	if t, ok := parseTime(iso); ok {
		return t.Format("Jan 2, 2006")
	}
	if iso == "" {
		return "—"
	}
	return iso
}

// stamp renders an ISO timestamp with the time of day.
func stamp(iso string) string {
	if t, ok := parseTime(iso); ok {
		return t.Format("Jan 2, 2006 3:04 PM")
	}
	if iso == "" {
		return "—"
	}
	return iso
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// label turns an enum value into words: IN_TRANSIT -> In Transit.
func label[T ~string](v T) string {
	parts := strings.Split(strings.ToLower(string(v)), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

func place(a models.Address) string {
	if a.State == "" {
		return a.City
	}
	return a.City + ", " + a.State
}
