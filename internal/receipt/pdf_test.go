package receipt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleEntry() EntryReceipt {
	entry := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	return EntryReceipt{
		FacilityName: "CrudPark",
		Folio:        "TKT000001",
		Plate:        "ABC123",
		Kind:         "GUEST",
		EntryAt:      entry,
		OperatorName: "Ana",
		Code:         "TICKET:TKT000001|PLATE:ABC123|DATE:1710064800",
	}
}

func TestRenderEntryProducesPDF(t *testing.T) {
	doc, err := RenderEntry(sampleEntry())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderExitProducesPDF(t *testing.T) {
	entry := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	doc, err := RenderExit(ExitReceipt{
		FacilityName: "CrudPark",
		Folio:        "TKT000001",
		Plate:        "ABC123",
		Kind:         "GUEST",
		EntryAt:      entry,
		ExitAt:       entry.Add(105 * time.Minute),
		StayMinutes:  105,
		OperatorName: "Ana",
		Amount:       decimal.RequireFromString("5.5"),
		Method:       "Cash",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestPDFPrinterSpoolsFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	printer, err := NewPDFPrinter(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, printer.PrintEntry(context.Background(), sampleEntry()))

	info, err := os.Stat(filepath.Join(dir, "TKT000001-entry.pdf"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = os.Stat(filepath.Join(dir, "TKT000001-entry.pdf.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestPDFPrinterHonorsCancelledContext(t *testing.T) {
	printer, err := NewPDFPrinter(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the render wins the race or the cancellation is reported.
	err = printer.PrintEntry(ctx, sampleEntry())
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
