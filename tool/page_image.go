package tool

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for data-URI images
	_ "image/jpeg" // register decoder for data-URI images
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageImageTool downloads a web page, extracts the first image embedded as a
// data URI, and returns it normalized to base64-encoded PNG. Another thin I/O
// wrapper around the core; the interesting work happens in goquery and the
// image codecs.
type PageImageTool struct {
	httpClient *http.Client
}

// NewPageImageTool creates the tool with a default HTTP client.
func NewPageImageTool() *PageImageTool {
	return &PageImageTool{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// Name implements Tool.
func (t *PageImageTool) Name() string { return "page_image" }

// Description implements Tool.
func (t *PageImageTool) Description() string {
	return "Fetch a web page and return its first embedded data-URI image as base64 PNG"
}

// Parameters implements Tool.
func (t *PageImageTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "Page URL to download"},
		},
		"required": []string{"url"},
	}
}

// Call implements Tool.
func (t *PageImageTool) Call(ctx context.Context, args map[string]any) (any, error) {
	pageURL, _ := args["url"].(string)
	if pageURL == "" {
		return nil, NewToolError(t.Name(), "url must not be empty", CodeValidationError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	raw, ok := firstDataURIImage(doc)
	if !ok {
		return nil, fmt.Errorf("no data-URI image found on page")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode embedded image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("load embedded image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("re-encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// firstDataURIImage returns the base64 payload of the first
// <img src="data:image/...;base64,..."> on the page.
func firstDataURIImage(doc *goquery.Document) (string, bool) {
	var payload string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, exists := sel.Attr("src")
		if !exists || !strings.HasPrefix(src, "data:image/") {
			return true
		}
		idx := strings.Index(src, "base64,")
		if idx < 0 {
			return true
		}
		payload = src[idx+len("base64,"):]
		return false
	})
	return payload, payload != ""
}
