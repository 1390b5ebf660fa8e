package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newTestProber(t *testing.T, routes map[string][]byte) (*Prober, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProber(server.Client(), logger), server
}

func TestProber_Probe(t *testing.T) {
	prober, server := newTestProber(t, map[string][]byte{
		"/cover.png": encodePNG(t, 20, 30),
		"/blank.gif": encodeGIF(t, 1, 1),
		"/notes.txt": []byte("not an image at all"),
		"/wide.gif":  encodeGIF(t, 40, 10),
	})
	ctx := context.Background()

	t.Run("real image", func(t *testing.T) {
		dims, err := prober.Probe(ctx, server.URL+"/cover.png")
		require.NoError(t, err)
		assert.Equal(t, Dimensions{Format: "png", Width: 20, Height: 30}, dims)
	})

	t.Run("gif", func(t *testing.T) {
		dims, err := prober.Probe(ctx, server.URL+"/wide.gif")
		require.NoError(t, err)
		assert.Equal(t, "gif", dims.Format)
	})

	t.Run("placeholder", func(t *testing.T) {
		_, err := prober.Probe(ctx, server.URL+"/blank.gif")
		assert.ErrorIs(t, err, ErrPlaceholder)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := prober.Probe(ctx, server.URL+"/notes.txt")
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := prober.Probe(ctx, server.URL+"/missing.jpg")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := prober.Probe(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyURL)
	})
}

func TestProber_ProbeSendsRange(t *testing.T) {
	var gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(encodePNG(t, 4, 4))
	}))
	defer server.Close()

	prober := NewProber(server.Client(), slog.Default())
	_, err := prober.Probe(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "bytes=0-65535", gotRange)
}

func TestProber_BlurHash(t *testing.T) {
	prober, server := newTestProber(t, map[string][]byte{
		"/cover.png": encodePNG(t, 120, 180),
	})

	hash, err := prober.BlurHash(context.Background(), server.URL+"/cover.png")
	require.NoError(t, err)
	// 1 size + 1 max AC + 4 DC + 2 per AC component (4*3-1).
	assert.Len(t, hash, 28)
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	_, err := ComputeBlurHash([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestResizeForBlurHash(t *testing.T) {
	tall := image.NewRGBA(image.Rect(0, 0, 100, 400))
	got := resizeForBlurHash(tall).Bounds()
	assert.Equal(t, 16, got.Dx())
	assert.Equal(t, 64, got.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, resizeForBlurHash(small))
}
