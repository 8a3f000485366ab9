package tool

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNGBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPageImageTool(t *testing.T) {
	embedded := tinyPNGBase64(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<img src="/static/logo.svg">
			<img src='data:image/png;base64,%s'>
		</body></html>`, embedded)
	}))
	defer srv.Close()

	pt := NewPageImageTool()
	result, err := pt.Call(context.Background(), map[string]any{"url": srv.URL})
	require.NoError(t, err)

	encoded, ok := result.(string)
	require.True(t, ok)

	// The output decodes back into a valid PNG of the original size.
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())
}

func TestPageImageToolNoDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><img src="/static/logo.png"></body></html>`)
	}))
	defer srv.Close()

	pt := NewPageImageTool()
	_, err := pt.Call(context.Background(), map[string]any{"url": srv.URL})
	assert.ErrorContains(t, err, "no data-URI image")
}

func TestPageImageToolRejectsEmptyURL(t *testing.T) {
	pt := NewPageImageTool()
	_, err := pt.Call(context.Background(), map[string]any{"url": ""})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}
