// Package screenshot saves framebuffer contents as image files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// Capturer writes screenshots into a directory with timestamped names.
type Capturer struct {
	dir    string
	prefix string
	format string
	now    func() time.Time
}

// New creates a capturer. An empty format means PNG.
func New(dir, prefix, format string) (*Capturer, error) {
	switch format {
	case "":
		format = FormatPNG
	case FormatPNG, FormatBMP:
	default:
		return nil, fmt.Errorf("unsupported screenshot format %q", format)
	}
	return &Capturer{dir: dir, prefix: prefix, format: format, now: time.Now}, nil
}

// Save writes bottom-up RGBA pixels, as read back from OpenGL, to a new file
// and returns its path.
func (c *Capturer) Save(pixels []byte, width, height int) (string, error) {
	img, err := FlipRGBA(pixels, width, height)
	if err != nil {
		return "", err
	}

	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%s_%s.%s",
		c.prefix, c.now().Format("2006-01-02_15-04-05.000"), c.format))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := c.encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding %s: %w", c.format, err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Capturer) encode(w io.Writer, img image.Image) error {
	if c.format == FormatBMP {
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}

// FlipRGBA copies width*height RGBA pixels into an image, flipping rows
// since OpenGL's origin is bottom-left.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}
