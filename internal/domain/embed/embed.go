package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/manager"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
)

// DefaultMaxPageBytes limits page input to 10MB.
const DefaultMaxPageBytes = 10 * 1024 * 1024

var (
	ErrEmptyPage    = errors.New("page is empty")
	ErrPageTooLarge = errors.New("page exceeds maximum size")
)

var (
	stateXPath = fmt.Sprintf(`//script[@type=%q]`, widget.StateMimeType)
	viewXPath  = fmt.Sprintf(`//script[@type=%q]`, widget.ViewMimeType)
)

// Options configures a Renderer.
type Options struct {
	// KeepScripts leaves the widget-view script tags in the output.
	KeepScripts  bool
	MaxPageBytes int
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// ViewOutcome reports one widget-view script.
type ViewOutcome struct {
	ModelID  string `json:"model_id,omitempty"`
	Rendered bool   `json:"rendered"`
	Error    string `json:"error,omitempty"`
}

// Result is a rendered page.
type Result struct {
	HTML        string        `json:"html"`
	Charset     string        `json:"charset"`
	Models      int           `json:"models"`
	Views       []ViewOutcome `json:"views"`
	StateErrors []string      `json:"state_errors,omitempty"`
}

// Rendered counts views that displayed.
func (r *Result) Rendered() int {
	n := 0
	for _, v := range r.Views {
		if v.Rendered {
			n++
		}
	}
	return n
}

// Failed counts views that did not display.
func (r *Result) Failed() int {
	return len(r.Views) - r.Rendered()
}

// Renderer performs the widget embed bootstrap on a static page: it loads
// every embedded widget state, then renders each widget-view script into a
// widget-subarea placed just before the script.
type Renderer struct {
	manager *manager.Manager
	opts    Options
	logger  *zap.Logger
}

// NewRenderer creates a renderer that populates m.
func NewRenderer(m *manager.Manager, opts Options) *Renderer {
	if opts.MaxPageBytes <= 0 {
		opts.MaxPageBytes = DefaultMaxPageBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{manager: m, opts: opts, logger: logger}
}

// RenderPage renders every widget in page. Individual state or view failures
// are reported in the result; only unreadable input is an error.
func (r *Renderer) RenderPage(ctx context.Context, page []byte) (*Result, error) {
	timer := monitoring.NewTimer(r.opts.Metrics, "render_page")

	if len(page) == 0 {
		timer.Stop("error")
		return nil, ErrEmptyPage
	}
	if len(page) > r.opts.MaxPageBytes {
		timer.Stop("error")
		return nil, fmt.Errorf("%w of %d bytes", ErrPageTooLarge, r.opts.MaxPageBytes)
	}

	decoded, name, err := decode(page)
	if err != nil {
		timer.Stop("error")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		timer.Stop("error")
		return nil, fmt.Errorf("parse page: %w", err)
	}
	root := doc.Nodes[0]
	result := &Result{Charset: name, Views: []ViewOutcome{}}

	for _, script := range htmlquery.Find(root, stateXPath) {
		state, err := widget.ParseStateDocument([]byte(htmlquery.InnerText(script)))
		if err == nil {
			err = r.manager.SetState(ctx, state)
		}
		if err != nil {
			r.logger.Warn("Failed to load embedded widget state", zap.Error(err))
			result.StateErrors = append(result.StateErrors, err.Error())
		}
	}
	result.Models = len(r.manager.GetState().State)

	for _, script := range htmlquery.Find(root, viewXPath) {
		if err := ctx.Err(); err != nil {
			timer.Stop("cancelled")
			return nil, err
		}
		result.Views = append(result.Views, r.renderView(ctx, doc, script))
	}

	out, err := doc.Html()
	if err != nil {
		timer.Stop("error")
		return nil, fmt.Errorf("serialize page: %w", err)
	}
	result.HTML = out

	elapsed := timer.Stop("success")
	r.logger.Debug("Rendered page",
		zap.String("charset", name),
		zap.Int("models", result.Models),
		zap.Int("rendered", result.Rendered()),
		zap.Int("failed", result.Failed()),
		zap.Duration("duration", elapsed))
	return result, nil
}

func (r *Renderer) renderView(ctx context.Context, doc *goquery.Document, script *html.Node) ViewOutcome {
	data := strings.TrimSpace(htmlquery.InnerText(script))
	var outcome ViewOutcome
	if payload, err := widget.ParseViewPayload(data); err == nil {
		outcome.ModelID = payload.ModelID
	}

	model := &rendermime.MimeModel{Data: map[string]interface{}{widget.ViewMimeType: data}}
	node, _, err := r.manager.RenderMime().Render(ctx, model, rendermime.SafeAny)
	if node == nil {
		node = dom.NewElement("div")
		node.SetText(manager.MsgDisplayFailed)
	}
	if err != nil {
		outcome.Error = err.Error()
		r.logger.Warn("Failed to render widget view",
			zap.String("model_id", outcome.ModelID),
			zap.Error(err))
	} else {
		outcome.Rendered = true
	}

	subarea := dom.NewElement("div")
	subarea.AddClass("widget-subarea")
	subarea.AddElement(node)

	sel := doc.FindNodes(script)
	sel.BeforeNodes(subarea.Node())
	if !r.opts.KeepScripts {
		sel.Remove()
	}
	return outcome
}

// decode converts page to UTF-8. Valid UTF-8 is kept as is; otherwise the
// encoding is detected with chardet.
func decode(page []byte) ([]byte, string, error) {
	if utf8.Valid(page) {
		return page, "utf-8", nil
	}

	name := "windows-1252"
	if best, err := chardet.NewTextDetector().DetectBest(page); err == nil && best != nil {
		name = strings.ToLower(best.Charset)
	}
	reader, err := charset.NewReader(bytes.NewReader(page), "text/html; charset="+name)
	if err != nil {
		return nil, "", fmt.Errorf("decode page as %s: %w", name, err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("decode page as %s: %w", name, err)
	}
	return decoded, name, nil
}
