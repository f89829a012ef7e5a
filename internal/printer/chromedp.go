package printer

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"printbridge/internal/constants"
	"printbridge/internal/types"
)

// A4 in inches, matching the fixed page the wkhtmltopdf backend produces.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.75
)

// ChromedpRenderer renders HTML to PDF through a headless Chrome instance via
// the DevTools protocol. It keeps one allocator for the renderer's lifetime;
// each render gets its own browser context.
type ChromedpRenderer struct {
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpRenderer(logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpRenderer{
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

func (r *ChromedpRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	timeout := constants.ProcessTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)
	defer timeoutCancel()

	start := time.Now()
	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginRight(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(browserCtx.Err(), context.DeadlineExceeded) {
			return nil, types.TimedOut("HTML rendering did not finish in time", err)
		}
		return nil, types.PrintError("HTML rendering failed: "+err.Error(), err)
	}
	if len(pdfData) == 0 {
		return nil, types.PrintError("HTML rendering produced an empty PDF", nil)
	}

	r.logger.Debug("html rendered to pdf",
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))
	return pdfData, nil
}

func (r *ChromedpRenderer) Close() error {
	r.allocCancel()
	return nil
}
