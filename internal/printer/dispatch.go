package printer

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"printbridge/internal/config"
	"printbridge/internal/logger"
	"printbridge/internal/types"
)

// Dispatcher routes a validated print request to the pipeline for its
// content-type and normalizes the outcome. Printing is at-most-once: a failed
// submission is never retried here, the caller resubmits.
type Dispatcher struct {
	runner Runner
	logger *zap.Logger

	mu       sync.RWMutex
	renderer Renderer
}

func NewDispatcher(runner Runner, renderer Renderer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{runner: runner, renderer: renderer, logger: log}
}

// SetRenderer swaps the HTML renderer backend and returns the previous one so
// the caller can close it. Config reloads use this when html_renderer changes.
func (d *Dispatcher) SetRenderer(r Renderer) Renderer {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.renderer
	d.renderer = r
	return old
}

func (d *Dispatcher) currentRenderer() Renderer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.renderer
}

// Submit validates the request against the config snapshot and dispatches it.
// Validation failures surface before any temp file is created or process
// spawned.
func (d *Dispatcher) Submit(ctx context.Context, req *types.PrintRequest, cfg *config.Config) (*types.PrintResponse, error) {
	if !cfg.AllowsFileType(req.ContentType) {
		return nil, types.UnsupportedFormat(req.ContentType)
	}

	// Base64 inflates the payload by 4/3; the decoded estimate is compared
	// against the content-level ceiling.
	estimated := int64(len(req.Content)) * 3 / 4
	if estimated > cfg.MaxFileSizeBytes() {
		return nil, types.FileTooLarge()
	}

	target := selectPrinter(req, cfg)
	d.logger.Info("print request",
		zap.String("content_type", req.ContentType),
		zap.String("printer", target),
		zap.Int64("estimated_bytes", estimated))

	var (
		resp *types.PrintResponse
		err  error
	)
	switch req.ContentType {
	case "pdf":
		resp, err = d.printPDF(ctx, target, req.Content, req.Copies)
	case "html":
		resp, err = d.printHTML(ctx, target, req.Content, req.Copies, cfg)
	case "text":
		resp, err = d.printText(ctx, target, req.Content, req.Copies)
	case "image":
		resp, err = d.printImage(ctx, target, req.Content, req.Copies)
	default:
		return nil, types.UnsupportedFormat(req.ContentType)
	}

	if err != nil {
		logger.Error(d.logger, err, "print dispatch")
		return nil, err
	}
	logger.PrintJob(d.logger, resp.JobID, target, "submitted")
	return resp, nil
}

// selectPrinter resolves the spool destination: explicit request target, then
// the configured default, then the literal "default" so the OS resolves its
// own.
func selectPrinter(req *types.PrintRequest, cfg *config.Config) string {
	if req.PrinterName != "" {
		return req.PrinterName
	}
	if cfg.DefaultPrinter != "" {
		return cfg.DefaultPrinter
	}
	return "default"
}

func copiesArg(copies int) string {
	if copies <= 0 {
		copies = 1
	}
	return strconv.Itoa(copies)
}

// submitFile hands a staged file to lp and recovers the spooler job id from
// its stdout.
func (d *Dispatcher) submitFile(ctx context.Context, target, path string, copies int) (string, error) {
	stdout, stderr, err := d.runner.Run(ctx, "lp",
		"-d", target, "-n", copiesArg(copies), path)
	if err != nil {
		var bridgeErr *types.BridgeError
		if errors.As(err, &bridgeErr) {
			return "", err
		}
		return "", types.PrintError(string(stderr), err)
	}
	return ParseJobID(string(stdout)), nil
}

func (d *Dispatcher) printPDF(ctx context.Context, target, content string, copies int) (*types.PrintResponse, error) {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, types.DecodeError(err)
	}

	path, cleanup, err := writeTempFile("print-*.pdf", data)
	if err != nil {
		return nil, types.IoError("failed to stage PDF", err)
	}
	defer cleanup()

	jobID, err := d.submitFile(ctx, target, path, copies)
	if err != nil {
		return nil, err
	}
	return &types.PrintResponse{
		Success: true,
		Message: "PDF sent to printer",
		JobID:   jobID,
	}, nil
}

func (d *Dispatcher) printHTML(ctx context.Context, target, content string, copies int, cfg *config.Config) (*types.PrintResponse, error) {
	pdfData, err := d.currentRenderer().RenderHTML(ctx, content)
	if err != nil {
		if !cfg.BrowserFallback {
			return nil, err
		}
		d.logger.Warn("html conversion failed, opening in browser", zap.Error(err))
		return d.openInBrowser(content)
	}

	// Feed the rendered PDF through the pdf pipeline so the response carries
	// a real spooler job id.
	return d.printPDF(ctx, target, base64.StdEncoding.EncodeToString(pdfData), copies)
}

// openInBrowser is the best-effort fallback when HTML conversion is
// unavailable. The staged file intentionally outlives the request: the
// browser needs it on disk after we return.
func (d *Dispatcher) openInBrowser(content string) (*types.PrintResponse, error) {
	f, err := os.CreateTemp("", "print-*.html")
	if err != nil {
		return nil, types.IoError("failed to stage HTML", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, types.IoError("failed to stage HTML", err)
	}
	f.Close()

	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{f.Name()}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", f.Name()}
	default:
		name, args = "xdg-open", []string{f.Name()}
	}
	if err := d.runner.Spawn(name, args...); err != nil {
		os.Remove(f.Name())
		return nil, types.IoError("failed to open browser", err)
	}

	return &types.PrintResponse{
		Success: true,
		Message: "HTML opened in default browser",
	}, nil
}

func (d *Dispatcher) printText(ctx context.Context, target, content string, copies int) (*types.PrintResponse, error) {
	path, cleanup, err := writeTempFile("print-*.txt", []byte(content))
	if err != nil {
		return nil, types.IoError("failed to stage text", err)
	}
	defer cleanup()

	jobID, err := d.submitFile(ctx, target, path, copies)
	if err != nil {
		return nil, err
	}
	return &types.PrintResponse{
		Success: true,
		Message: "Text sent to printer",
		JobID:   jobID,
	}, nil
}

func (d *Dispatcher) printImage(ctx context.Context, target, content string, copies int) (*types.PrintResponse, error) {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, types.DecodeError(err)
	}

	path, cleanup, err := writeTempFile("print-*.png", data)
	if err != nil {
		return nil, types.IoError("failed to stage image", err)
	}
	defer cleanup()

	jobID, err := d.submitFile(ctx, target, path, copies)
	if err != nil {
		return nil, err
	}
	return &types.PrintResponse{
		Success: true,
		Message: "Image sent to printer",
		JobID:   jobID,
	}, nil
}
