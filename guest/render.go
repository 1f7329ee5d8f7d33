package guest

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/zeebo/blake3"

	"github.com/wippyai/http-adapter/adapter"
)

// Props are the page properties for Render.
type Props struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// DefaultProps returns the properties the render page uses when none are set.
func DefaultProps() Props {
	return Props{Name: "Cloud Native Wasm Day!", Count: 5}
}

var (
	markdown     goldmark.Markdown
	markdownOnce sync.Once
)

func markdownEngine() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

// Render serves an HTML page built from p. The query parameters name and
// count override p per request. Responses carry a content ETag and a
// matching If-None-Match yields 304.
func Render(p Props) adapter.Handler {
	if p.Name == "" {
		p.Name = DefaultProps().Name
	}
	return adapter.HandlerFunc(func(ctx context.Context, s *adapter.State, req adapter.IncomingRequest, _ adapter.ResponseOutparam) error {
		query, err := s.IncomingRequestQuery(ctx, req)
		if err != nil {
			return err
		}
		props := p.override(query)

		page, err := RenderPage(props)
		if err != nil {
			return err
		}
		etag := ETag(page)

		headers, err := s.IncomingRequestHeaders(ctx, req)
		if err != nil {
			return err
		}
		match := s.FieldsGet(ctx, headers, "if-none-match")
		s.DropFields(ctx, headers)

		if len(match) > 0 && match[0] == etag {
			return respond(ctx, s, 304, []adapter.Entry{{Name: "ETag", Value: etag}}, nil)
		}
		return respond(ctx, s, 200, []adapter.Entry{
			{Name: "Content-Type", Value: "text/html"},
			{Name: "ETag", Value: etag},
		}, page)
	})
}

func (p Props) override(rawQuery string) Props {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return p
	}
	if name := values.Get("name"); name != "" {
		p.Name = name
	}
	if count, err := strconv.Atoi(values.Get("count")); err == nil {
		p.Count = count
	}
	return p
}

// RenderPage renders the page for p as a complete HTML document.
func RenderPage(p Props) ([]byte, error) {
	source := fmt.Sprintf("# Hello, %s\n\nThe counter is at **%d**.\n\n| prop | value |\n|---|---|\n| name | %s |\n| count | %d |\n",
		p.Name, p.Count, p.Name, p.Count)

	var body bytes.Buffer
	if err := markdownEngine().Convert([]byte(source), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(p.Name))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
