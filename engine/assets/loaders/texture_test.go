package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	td, err := decodeTexture(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if td.Width != 2 || td.Height != 2 || td.Channels != 4 {
		t.Fatalf("unexpected dimensions %dx%d channels %d", td.Width, td.Height, td.Channels)
	}
	if len(td.Pixels) != 2*2*4 {
		t.Fatalf("unexpected pixel buffer size %d", len(td.Pixels))
	}
	if td.Pixels[0] != 255 || td.Pixels[3] != 255 {
		t.Fatalf("top left pixel should be opaque red, got %v", td.Pixels[:4])
	}
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	if _, err := decodeTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected a decode error")
	}
}
