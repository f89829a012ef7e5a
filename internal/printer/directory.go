package printer

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"printbridge/internal/types"
)

// Directory discovers installed printers and their capabilities by querying
// the spooler's CLI utilities.
type Directory struct {
	runner Runner
	logger *zap.Logger
}

func NewDirectory(runner Runner, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{runner: runner, logger: logger}
}

// ListPrinters returns every configured printer with status, default flag and
// capabilities. A per-printer query failure degrades that printer to unknown
// status and default capabilities instead of aborting the whole listing; only
// failure of the aggregate lpstat queries is a discovery error.
func (d *Directory) ListPrinters(ctx context.Context) ([]types.PrinterInfo, error) {
	defaultPrinter, err := d.defaultDestination(ctx)
	if err != nil {
		return nil, err
	}

	stdout, stderr, err := d.runner.Run(ctx, "lpstat", "-p", "-d")
	if err != nil {
		return nil, types.PrinterError("failed to query printers: "+string(stderr), err)
	}

	names := ParsePrinterNames(string(stdout))
	printers := make([]types.PrinterInfo, 0, len(names))
	for _, name := range names {
		caps := d.printerCapabilities(ctx, name)
		printers = append(printers, types.PrinterInfo{
			Name:          name,
			Status:        d.printerStatus(ctx, name),
			IsDefault:     name == defaultPrinter,
			SupportsColor: caps.SupportsColor,
			PaperSizes:    caps.PaperSizes,
		})
	}
	return printers, nil
}

func (d *Directory) defaultDestination(ctx context.Context) (string, error) {
	stdout, stderr, err := d.runner.Run(ctx, "lpstat", "-d")
	if err != nil {
		return "", types.PrinterError("failed to query default printer: "+string(stderr), err)
	}
	return ParseDefaultDestination(string(stdout)), nil
}

func (d *Directory) printerStatus(ctx context.Context, name string) string {
	stdout, _, err := d.runner.Run(ctx, "lpstat", "-p", name)
	if err != nil {
		d.logger.Warn("printer status query failed, degrading to unknown",
			zap.String("printer", name), zap.Error(err))
		return StatusUnknown
	}
	return ClassifyStatus(string(stdout))
}

func (d *Directory) printerCapabilities(ctx context.Context, name string) Capabilities {
	stdout, _, err := d.runner.Run(ctx, "lpoptions", "-p", name, "-l")
	if err != nil {
		d.logger.Warn("printer capability query failed, using defaults",
			zap.String("printer", name), zap.Error(err))
		return Capabilities{PaperSizes: slices.Clone(DefaultPaperSizes)}
	}
	return ParseCapabilities(string(stdout))
}
