package service

import (
	"context"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
)

// PrinterService exposes the printer pass-through operations.
type PrinterService struct {
	dispatcher  *PrintDispatcher
	formatter   *ReceiptFormatter
	printerType string
	now         func() time.Time
}

// NewPrinterService creates a new printer service.
func NewPrinterService(dispatcher *PrintDispatcher, formatter *ReceiptFormatter, printerType string) *PrinterService {
	return &PrinterService{
		dispatcher:  dispatcher,
		formatter:   formatter,
		printerType: printerType,
		now:         time.Now,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Available bool   `json:"available"`
	Connected bool   `json:"connected"`
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
}

// PrintJobResult pairs a print outcome with the document that was sent.
type PrintJobResult struct {
	PrintOutcome
	Receipt *entity.ReceiptDocument `json:"receipt,omitempty"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	status := &PrinterStatus{Type: s.printerType}
	if p := s.dispatcher.Printer(); p != nil {
		status.Available = true
		status.Connected = p.IsConnected()
		status.Name = p.Name()
	}
	return status
}

// Available reports whether a printer is configured.
func (s *PrinterService) Available() bool {
	return s.dispatcher.Available()
}

// TestPrint prints the fixed test page.
// The formatted page is returned too, so it can be shown when no printer is attached.
func (s *PrinterService) TestPrint(ctx context.Context) *PrintJobResult {
	return s.PrintReceipt(ctx, s.formatter.TestReceipt(s.now()))
}

// PrintReceipt formats and prints a receipt that is not stored as a sale.
func (s *PrinterService) PrintReceipt(ctx context.Context, receipt *entity.Receipt) *PrintJobResult {
	if receipt.Header.StoreName == "" {
		receipt.Header = s.formatter.Header()
	}
	if receipt.Date.IsZero() {
		receipt.Date = s.now()
	}

	outcome := s.dispatcher.Dispatch(ctx, s.formatter.Render(receipt))
	return &PrintJobResult{
		PrintOutcome: outcome,
		Receipt:      s.formatter.Format(receipt),
	}
}

// Cut cuts the paper.
func (s *PrinterService) Cut(ctx context.Context) PrintOutcome {
	return s.dispatcher.Cut(ctx)
}

// OpenDrawer opens the cash drawer.
func (s *PrinterService) OpenDrawer(ctx context.Context) PrintOutcome {
	return s.dispatcher.OpenDrawer(ctx)
}
