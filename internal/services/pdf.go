package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"dentalboard-backend/internal/finance"
	"dentalboard-backend/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// ReportData is everything the report template renders.
type ReportData struct {
	ClinicName  string
	Kind        string
	Period      string
	GeneratedAt time.Time
	Dashboard   finance.Dashboard
	Rows        []models.MonthlyDataView
	Commentary  string
}

// KindLabel is the Japanese title for the report kind.
func (d ReportData) KindLabel() string {
	if d.Kind == models.ReportAnnual {
		return "年次経営レポート"
	}
	return "月次経営レポート"
}

// PDFRenderer renders reports to HTML and prints them with headless Chrome.
type PDFRenderer struct {
	tmpl      *template.Template
	remoteURL string
	timeout   time.Duration
}

// NewPDFRenderer parses the report template. remoteURL points at a running
// Chrome DevTools endpoint; when empty a local Chrome is launched per render.
func NewPDFRenderer(remoteURL string) (*PDFRenderer, error) {
	tmpl, err := template.New("report.html").Funcs(template.FuncMap{
		"yen": finance.FormatYen,
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"num": func(v float64) string { return finance.FormatYen(int64(v + 0.5)) },
		"date": func(t time.Time) string {
			return t.Format("2006年1月2日 15:04")
		},
		"rate": func(d *finance.Delta) string {
			if d == nil || d.Rate == nil {
				return "-"
			}
			return fmt.Sprintf("%+.1f%%", *d.Rate*100)
		},
	}).ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &PDFRenderer{tmpl: tmpl, remoteURL: remoteURL, timeout: 60 * time.Second}, nil
}

func (r *PDFRenderer) RenderHTML(data ReportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the PDF for data.
func (r *PDFRenderer) Render(ctx context.Context, data ReportData) ([]byte, error) {
	html, err := r.RenderHTML(data)
	if err != nil {
		return nil, err
	}
	return r.PrintPDF(ctx, html)
}

// PrintPDF loads html into a blank tab and prints it as A4.
func (r *PDFRenderer) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, r.timeout)
	defer cancelTimeout()

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if r.remoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, r.remoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU, chromedp.NoSandbox)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	}
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdfBuf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdfBuf, nil
}
