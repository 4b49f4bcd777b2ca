package leads_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLeads() []leads.Lead {
	return []leads.Lead{
		{
			ID:        "l1",
			Name:      "Ana Souza",
			Email:     "ana@acme.io",
			Company:   "Acme, Inc.",
			Status:    leads.StatusQualified,
			Source:    "website",
			CreatedAt: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
			Message:   "Need a \"quote\"",
		},
		{ID: "l2", Name: "Bo", Email: "bo@x.io", Status: leads.StatusNew, Source: "chat"},
	}
}

// TestWriteCSV verifies header order and quoting of awkward values.
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, leads.WriteCSV(&buf, sampleLeads()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, leads.ExportHeader, rows[0])
	require.Equal(t, []string{"l1", "Ana Souza", "ana@acme.io", "", "Acme, Inc.", "qualified", "website", "2026-02-03", "Need a \"quote\""}, rows[1])
	require.Equal(t, "l2", rows[2][0])
}

// TestWriteXLSX verifies the workbook can be read back.
func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, leads.WriteXLSX(&buf, sampleLeads()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Leads"}, f.GetSheetList())
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, leads.ExportHeader, rows[0])
	require.Equal(t, "Ana Souza", rows[1][1])
	require.Equal(t, "qualified", rows[1][5])
}

// TestStatus_Valid verifies only pipeline stages are accepted.
func TestStatus_Valid(t *testing.T) {
	require.True(t, leads.StatusWon.Valid())
	require.False(t, leads.Status("archived").Valid())
}

// TestCountByStatus verifies tallies per stage.
func TestCountByStatus(t *testing.T) {
	counts := leads.CountByStatus(sampleLeads())
	require.Equal(t, 1, counts[leads.StatusQualified])
	require.Equal(t, 1, counts[leads.StatusNew])
	require.Zero(t, counts[leads.StatusLost])
}
