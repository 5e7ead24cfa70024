package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/printer"
	"go.uber.org/zap"
)

const defaultPrintTimeout = 5 * time.Second

// PrintOutcome reports what happened to one print job. Dispatch never
// returns an error; every failure ends up here.
type PrintOutcome struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Code    apperror.Code `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func printFailure(code apperror.Code, message string, err error) PrintOutcome {
	out := PrintOutcome{Code: code, Message: message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// PrintDispatcher sends byte payloads to the configured printer on a small
// worker pool with a deadline per job. A nil printer means no printer is
// configured and every job reports PRINTER_UNAVAILABLE.
type PrintDispatcher struct {
	printer printer.Printer
	pool    *ants.Pool
	timeout time.Duration
}

// NewPrintDispatcher creates a dispatcher. p may be nil.
func NewPrintDispatcher(p printer.Printer, workers int, timeout time.Duration) (*PrintDispatcher, error) {
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create print pool: %w", err)
	}

	return &PrintDispatcher{
		printer: p,
		pool:    pool,
		timeout: timeout,
	}, nil
}

// Available reports whether a printer capability was configured.
func (d *PrintDispatcher) Available() bool {
	return d.printer != nil
}

// Printer returns the configured capability, or nil.
func (d *PrintDispatcher) Printer() printer.Printer {
	return d.printer
}

// Dispatch prints a document.
func (d *PrintDispatcher) Dispatch(ctx context.Context, data []byte) PrintOutcome {
	return d.send(ctx, data, "Beleg erfolgreich gedruckt")
}

// Cut sends the paper cut command.
func (d *PrintDispatcher) Cut(ctx context.Context) PrintOutcome {
	return d.send(ctx, printer.CutCommand, "Papier geschnitten")
}

// OpenDrawer sends the cash drawer kick pulse.
func (d *PrintDispatcher) OpenDrawer(ctx context.Context) PrintOutcome {
	return d.send(ctx, printer.DrawerCommand, "Kassenschublade geöffnet")
}

func (d *PrintDispatcher) send(ctx context.Context, data []byte, successMsg string) PrintOutcome {
	if d.printer == nil {
		return printFailure(apperror.CodePrinterUnavailable, "Kein Drucker konfiguriert", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	err := d.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("printer panic: %v", r)
			}
		}()
		done <- d.printer.Print(ctx, data)
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			zap.S().Warnw("print job rejected, all workers busy", "printer", d.printer.Name())
			return printFailure(apperror.CodePrinterBusy, "Drucker ist beschäftigt", err)
		}
		return printFailure(apperror.CodePrinterUnavailable, "Drucker nicht verfügbar", err)
	}

	select {
	case err := <-done:
		if err == nil {
			return PrintOutcome{Success: true, Message: successMsg}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			zap.S().Warnw("print timed out", "printer", d.printer.Name(), "timeout", d.timeout)
			return printFailure(apperror.CodePrintTimeout, "Zeitüberschreitung beim Drucken", err)
		}
		zap.S().Warnw("print failed", "printer", d.printer.Name(), "error", err)
		return printFailure(apperror.CodePrintFailed, "Druckfehler", err)
	case <-ctx.Done():
		zap.S().Warnw("print timed out", "printer", d.printer.Name(), "timeout", d.timeout)
		return printFailure(apperror.CodePrintTimeout, "Zeitüberschreitung beim Drucken", ctx.Err())
	}
}

// Close stops the worker pool and releases the printer.
func (d *PrintDispatcher) Close() error {
	d.pool.Release()
	if d.printer != nil {
		return d.printer.Close()
	}
	return nil
}
