package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGenerate_BoundsAndAspectRatio(t *testing.T) {
	g := NewGenerator(200, 200, 80)
	out, err := g.Generate(context.Background(), models.KindImage, pngBytes(t, 800, 400))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	thumb, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %s, want jpeg", format)
	}
	b := thumb.Bounds()
	if b.Dx() > 200 || b.Dy() > 200 {
		t.Errorf("thumbnail %dx%d exceeds the 200x200 box", b.Dx(), b.Dy())
	}
	// 2:1 source must stay 2:1
	if b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("thumbnail %dx%d, want 200x100", b.Dx(), b.Dy())
	}
}

func TestGenerate_SmallSourceNotUpscaled(t *testing.T) {
	g := NewGenerator(200, 200, 80)
	out, err := g.Generate(context.Background(), models.KindImage, pngBytes(t, 50, 40))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	thumb, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	b := thumb.Bounds()
	if b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("thumbnail %dx%d, want the 50x40 source size", b.Dx(), b.Dy())
	}
}

func TestGenerate_UndecodableInputIsDecodeFailure(t *testing.T) {
	g := NewGenerator(200, 200, 80)
	_, err := g.Generate(context.Background(), models.KindImage, []byte("not an image"))
	if !errors.Is(err, utils.ErrDecodeFailure) {
		t.Fatalf("got %v, want a decode failure", err)
	}
}
