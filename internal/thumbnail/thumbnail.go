package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

// Generator produces JPEG previews bounded to a target box, preserving
// aspect ratio. Video previews are a representative still frame extracted
// with ffmpeg and pushed through the same resize/encode path.
type Generator struct {
	maxWidth  int
	maxHeight int
	quality   int
}

func NewGenerator(maxWidth, maxHeight, quality int) *Generator {
	return &Generator{maxWidth: maxWidth, maxHeight: maxHeight, quality: quality}
}

func (g *Generator) Generate(ctx context.Context, kind models.Kind, data []byte) ([]byte, error) {
	var img image.Image
	var err error
	switch kind {
	case models.KindVideo:
		img, err = extractFrame(ctx, data)
	default:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDecodeFailure, err)
	}

	thumb := imaging.Fit(img, g.maxWidth, g.maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: g.quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// extractFrame decodes the first frame of a video with ffmpeg. The source is
// staged in a temp file because most containers are not seekable from a pipe;
// the file is removed on every return path.
func extractFrame(ctx context.Context, data []byte) (image.Image, error) {
	tmp, err := os.CreateTemp("", "gallery-frame-*")
	if err != nil {
		return nil, fmt.Errorf("stage video: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage video: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", tmp.Name(),
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output")
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg frame: %w", err)
	}
	return img, nil
}
