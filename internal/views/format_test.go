package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "$0",
		"12.5":       "$12.5",
		"1234.5":     "$1,234.5",
		"1234567.25": "$1,234,567.25",
		"999.9999":   "$1,000",
		"-4200":      "-$4,200",
		"-0.4":       "-$0.4",
		"1450.5":     "$1,450.5",
	}
	for in, want := range tests {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "In Transit", label(models.ShipmentStatusInTransit))
	assert.Equal(t, "Out For Delivery", label(models.ShipmentStatusOutForDelivery))
	assert.Equal(t, "Urgent", label(models.PriorityUrgent))
}

func TestDay(t *testing.T) {
	assert.Equal(t, "Mar 1, 2024", day("2024-03-01T09:30:00Z"))
	assert.Equal(t, "—", day(""))
	assert.Equal(t, "tomorrow", day("tomorrow"))
}

func TestNewTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := newTable(&buf, "ID", "ROUTE")
	tbl.Append([]string{"shp-1", "Austin, TX → Denver, CO"})
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ROUTE")
	assert.Contains(t, lines[1], "Austin, TX → Denver, CO")
	assert.Equal(t, strings.Index(lines[0], "ROUTE"), strings.Index(lines[1], "Austin"))
}
