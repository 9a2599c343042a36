package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

const (
	// 80mm thermal roll.
	paperWidth  = 80
	paperHeight = 170

	timeLayout = "2006-01-02 15:04:05"
)

// PDFPrinter renders receipts sized for a thermal roll into a spool directory
// that the booth's print agent picks up.
type PDFPrinter struct {
	dir string
	log *zap.Logger
}

func NewPDFPrinter(dir string, log *zap.Logger) (*PDFPrinter, error) {
	if dir == "" {
		return nil, errors.New("receipt dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFPrinter{dir: dir, log: log.Named("receipt.pdf")}, nil
}

func (p *PDFPrinter) PrintEntry(ctx context.Context, r EntryReceipt) error {
	return p.spool(ctx, r.Folio+"-entry.pdf", func() ([]byte, error) { return RenderEntry(r) })
}

func (p *PDFPrinter) PrintExit(ctx context.Context, r ExitReceipt) error {
	return p.spool(ctx, r.Folio+"-exit.pdf", func() ([]byte, error) { return RenderExit(r) })
}

func (p *PDFPrinter) spool(ctx context.Context, name string, render func() ([]byte, error)) error {
	type result struct {
		doc []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := render()
		done <- result{doc: doc, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return fmt.Errorf("render %s: %w", name, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return fmt.Errorf("render %s: %w", name, res.err)
	}

	// Write then rename so the print agent never sees a partial file.
	path := filepath.Join(p.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, res.doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("spool %s: %w", name, err)
	}

	p.log.Debug("receipt spooled", zap.String("file", path))
	return nil
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithDimensions(paperWidth, paperHeight).
		WithLeftMargin(4).
		WithRightMargin(4).
		WithTopMargin(4).
		Build()
	return maroto.New(cfg)
}

func header(m core.Maroto, facility, title string) {
	m.AddRow(8,
		text.NewCol(12, facility, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}),
	)
	m.AddRow(6,
		text.NewCol(12, title, props.Text{Size: 9, Align: align.Center}),
	)
	m.AddRows(line.NewRow(3))
}

func field(m core.Maroto, label, value string) {
	m.AddRow(5,
		text.NewCol(5, label, props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(7, value, props.Text{Size: 8, Align: align.Right}),
	)
}

// RenderEntry renders the ticket handed to the driver on entry. Its QR code
// carries the ticket's receipt code.
func RenderEntry(r EntryReceipt) ([]byte, error) {
	m := newDocument()

	header(m, r.FacilityName, "ENTRY TICKET")
	field(m, "Folio", r.Folio)
	field(m, "Plate", r.Plate)
	field(m, "Type", r.Kind)
	field(m, "Entry", r.EntryAt.Format(timeLayout))
	field(m, "Operator", r.OperatorName)
	m.AddRows(line.NewRow(3))

	if r.Code != "" {
		m.AddRow(40, code.NewQrCol(12, r.Code, props.Rect{Center: true, Percent: 90}))
	}
	m.AddRow(6,
		text.NewCol(12, "Keep this ticket until exit", props.Text{Size: 7, Align: align.Center, Top: 2}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// RenderExit renders the closing receipt with the stay and the amount charged.
func RenderExit(r ExitReceipt) ([]byte, error) {
	m := newDocument()

	header(m, r.FacilityName, "EXIT RECEIPT")
	field(m, "Folio", r.Folio)
	field(m, "Plate", r.Plate)
	field(m, "Type", r.Kind)
	field(m, "Entry", r.EntryAt.Format(timeLayout))
	field(m, "Exit", r.ExitAt.Format(timeLayout))
	field(m, "Stay", strconv.FormatInt(r.StayMinutes, 10)+" min")
	field(m, "Operator", r.OperatorName)
	m.AddRows(line.NewRow(3))

	m.AddRow(8,
		text.NewCol(5, "TOTAL", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(7, "$"+r.Amount.StringFixed(2), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	if r.Method != "" {
		field(m, "Method", r.Method)
	}
	m.AddRow(6,
		text.NewCol(12, "Thank you for your visit", props.Text{Size: 7, Align: align.Center, Top: 2}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

var _ Printer = (*PDFPrinter)(nil)
var _ Printer = NoOpPrinter{}
