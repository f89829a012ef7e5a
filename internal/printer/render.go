package printer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"printbridge/internal/types"
)

// Renderer converts HTML to a PDF document. Implementations own whatever
// browser or external binary they need and release it in Close.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Renderer kinds accepted by the config's html_renderer key.
const (
	RendererWkhtmltopdf = "wkhtmltopdf"
	RendererChromedp    = "chromedp"
)

// NewRenderer builds the renderer backend named by kind.
func NewRenderer(kind string, runner Runner, logger *zap.Logger) (Renderer, error) {
	switch kind {
	case RendererWkhtmltopdf, "":
		return NewWkhtmltopdfRenderer(runner, logger), nil
	case RendererChromedp:
		return NewChromedpRenderer(logger), nil
	default:
		return nil, types.ConfigError("unknown html renderer: "+kind, nil)
	}
}

// WkhtmltopdfRenderer shells out to the wkhtmltopdf binary with a fixed A4
// page and 0.75in margins on all sides.
type WkhtmltopdfRenderer struct {
	runner Runner
	logger *zap.Logger
}

func NewWkhtmltopdfRenderer(runner Runner, logger *zap.Logger) *WkhtmltopdfRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WkhtmltopdfRenderer{runner: runner, logger: logger}
}

func (r *WkhtmltopdfRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	htmlPath, cleanupHTML, err := writeTempFile("print-*.html", []byte(html))
	if err != nil {
		return nil, types.IoError("failed to stage HTML for conversion", err)
	}
	defer cleanupHTML()

	pdfFile, err := os.CreateTemp("", "output-*.pdf")
	if err != nil {
		return nil, types.IoError("failed to create temp PDF file", err)
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()
	defer os.Remove(pdfPath)

	_, stderr, err := r.runner.Run(ctx, "wkhtmltopdf",
		"--page-size", "A4",
		"--margin-top", "0.75in",
		"--margin-right", "0.75in",
		"--margin-bottom", "0.75in",
		"--margin-left", "0.75in",
		htmlPath, pdfPath,
	)
	if err != nil {
		var bridgeErr *types.BridgeError
		if errors.As(err, &bridgeErr) && bridgeErr.Kind == types.KindTimedOut {
			return nil, err
		}
		return nil, types.PrintError("HTML conversion failed: "+string(stderr), err)
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, types.IoError("failed to read converted PDF", err)
	}
	if len(pdfData) == 0 {
		return nil, types.PrintError("HTML conversion produced an empty PDF", nil)
	}

	r.logger.Debug("html converted to pdf",
		zap.Int("bytes", len(pdfData)))
	return pdfData, nil
}

func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}

// writeTempFile persists data to a fresh temp file and returns its path plus
// a cleanup func that removes it.
func writeTempFile(pattern string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
