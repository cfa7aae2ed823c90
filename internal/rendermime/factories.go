package rendermime

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

// ErrInvalidPayload is returned when a bundle entry has the wrong shape.
var ErrInvalidPayload = errors.New("invalid mime payload")

// StandardFactories returns the built-in renderer factories.
func StandardFactories() []*Factory {
	return []*Factory{
		{
			Safe:        true,
			MimeTypes:   []string{"text/html"},
			DefaultRank: 50,
			CreateRenderer: func(opts RendererOptions) Renderer {
				return &htmlRenderer{base: newBase(opts.MimeType, "jp-RenderedHTMLCommon", "jp-RenderedHTML"), sanitizer: opts.Sanitizer}
			},
		},
		{
			Safe:        false,
			MimeTypes:   []string{"image/svg+xml"},
			DefaultRank: 80,
			CreateRenderer: func(opts RendererOptions) Renderer {
				return &svgRenderer{base: newBase(opts.MimeType, "jp-RenderedSVG")}
			},
		},
		{
			Safe:        true,
			MimeTypes:   []string{"image/bmp", "image/png", "image/jpeg", "image/gif", "image/webp"},
			DefaultRank: 90,
			CreateRenderer: func(opts RendererOptions) Renderer {
				return &imageRenderer{base: newBase(opts.MimeType, "jp-RenderedImage")}
			},
		},
		{
			Safe:        true,
			MimeTypes:   []string{"application/json"},
			DefaultRank: 100,
			CreateRenderer: func(opts RendererOptions) Renderer {
				return &jsonRenderer{base: newBase(opts.MimeType, "jp-RenderedJSON")}
			},
		},
		{
			Safe:        true,
			MimeTypes:   []string{"text/plain", "application/vnd.jupyter.stdout", "application/vnd.jupyter.stderr"},
			DefaultRank: 120,
			CreateRenderer: func(opts RendererOptions) Renderer {
				return &textRenderer{base: newBase(opts.MimeType, "jp-RenderedText")}
			},
		},
	}
}

type base struct {
	mimeType string
	node     *dom.Element
}

func newBase(mimeType string, classes ...string) base {
	node := dom.NewElement("div")
	node.AddClass(classes...)
	node.SetAttribute("data-mime-type", mimeType)
	return base{mimeType: mimeType, node: node}
}

func (b *base) Node() *dom.Element { return b.node }

// source joins multiline string payloads, which nbformat stores as lists.
func source(model *MimeModel, mimeType string) (string, error) {
	switch v := model.Data[mimeType].(type) {
	case string:
		return v, nil
	case []interface{}:
		var sb strings.Builder
		for _, line := range v {
			s, ok := line.(string)
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrInvalidPayload, mimeType)
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPayload, mimeType)
	}
}

type htmlRenderer struct {
	base
	sanitizer Sanitizer
}

func (r *htmlRenderer) RenderModel(_ context.Context, model *MimeModel) error {
	src, err := source(model, r.mimeType)
	if err != nil {
		return err
	}
	if !model.Trusted {
		if r.sanitizer != nil {
			src = r.sanitizer.Sanitize(src)
		} else {
			src = sanitize.Untrusted().Sanitize(src)
		}
	}
	return r.node.SetInnerHTML(src)
}

type svgRenderer struct {
	base
}

func (r *svgRenderer) RenderModel(_ context.Context, model *MimeModel) error {
	src, err := source(model, r.mimeType)
	if err != nil {
		return err
	}
	img := dom.NewElement("img")
	img.SetAttribute("src", "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(src)))
	r.node.Clear()
	r.node.AddElement(img)
	return nil
}

type imageRenderer struct {
	base
}

func (r *imageRenderer) RenderModel(_ context.Context, model *MimeModel) error {
	src, err := source(model, r.mimeType)
	if err != nil {
		return err
	}
	src = strings.Join(strings.Fields(src), "")
	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return fmt.Errorf("%w: %s is not base64: %v", ErrInvalidPayload, r.mimeType, err)
	}
	if detected := mimetype.Detect(data); !detected.Is(r.mimeType) {
		return fmt.Errorf("%w: payload is %s, declared %s", ErrInvalidPayload, detected.String(), r.mimeType)
	}

	img := dom.NewElement("img")
	img.SetAttribute("src", "data:"+r.mimeType+";base64,"+src)
	if meta, ok := model.Metadata[r.mimeType].(map[string]interface{}); ok {
		for _, key := range []string{"width", "height"} {
			if v, ok := meta[key]; ok {
				img.SetAttribute(key, fmt.Sprint(v))
			}
		}
	}
	// Intrinsic size, when the header decodes, lets the page reserve space.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.SetAttribute("data-natural-width", strconv.Itoa(cfg.Width))
		img.SetAttribute("data-natural-height", strconv.Itoa(cfg.Height))
	}
	r.node.Clear()
	r.node.AddElement(img)
	return nil
}

type jsonRenderer struct {
	base
}

func (r *jsonRenderer) RenderModel(_ context.Context, model *MimeModel) error {
	data, ok := model.Data[r.mimeType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, r.mimeType)
	}
	out, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	pre := dom.NewElement("pre")
	pre.SetText(string(out))
	r.node.Clear()
	r.node.AddElement(pre)
	return nil
}

type textRenderer struct {
	base
}

func (r *textRenderer) RenderModel(_ context.Context, model *MimeModel) error {
	src, err := source(model, r.mimeType)
	if err != nil {
		return err
	}
	if r.mimeType == "application/vnd.jupyter.stderr" {
		r.node.SetAttribute("data-mime-type", r.mimeType)
		r.node.AddClass("jp-OutputArea-stderr")
	}
	pre := dom.NewElement("pre")
	pre.SetText(src)
	r.node.Clear()
	r.node.AddElement(pre)
	return nil
}
