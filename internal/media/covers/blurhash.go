package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the target edge for BlurHash input. A small thumbnail
// hashes to nearly the same value in a fraction of the time.
const blurHashSize = 64

// BlurHash downloads the image at url and returns its 4x3 BlurHash.
func (p *Prober) BlurHash(ctx context.Context, url string) (string, error) {
	data, err := p.fetch(ctx, url, maxCoverSize, false)
	if err != nil {
		return "", err
	}
	return ComputeBlurHash(data)
}

// ComputeBlurHash hashes encoded image bytes.
func ComputeBlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	// 4 horizontal, 3 vertical components suit portrait covers.
	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales img so its longer edge is at most blurHashSize.
func resizeForBlurHash(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	if w > h {
		w, h = blurHashSize, max(h*blurHashSize/w, 1)
	} else {
		w, h = max(w*blurHashSize/h, 1), blurHashSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
