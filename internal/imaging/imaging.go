// Package imaging decodes, scales and re-encodes images for the profiler
// upload path and the resize command.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 360
	JPEGQuality   = 90
)

// Decode reads any registered format (jpeg, png, gif, webp).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errs.NewValidationError("unsupported or corrupt image", err)
	}
	return img, format, nil
}

// Resize scales src to exactly w x h with Catmull-Rom resampling.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// Fit scales src down to fit inside maxW x maxH keeping the aspect ratio.
// Images that already fit are returned unchanged.
func Fit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return Resize(src, nw, nh)
}

// EncodeJPEG encodes img at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Shrink decodes data, fits it into maxW x maxH and re-encodes it as JPEG.
func Shrink(data []byte, maxW, maxH int) ([]byte, error) {
	img, _, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Fit(img, maxW, maxH))
}

// ResizeFile scales the image at in to w x h and writes it to out. The output
// format follows the extension of out.
func ResizeFile(in, out string, w, h int) error {
	if w <= 0 || h <= 0 {
		return errs.NewValidationError(fmt.Sprintf("invalid size %dx%d", w, h), nil)
	}

	encode, err := encoderFor(out)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return err
	}

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	if err := encode(dst, Resize(img, w, h)); err != nil {
		_ = dst.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	return dst.Close()
}

func encoderFor(path string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
		}, nil
	case ".png":
		return png.Encode, nil
	default:
		return nil, errs.NewValidationError(fmt.Sprintf("unsupported output format %q", filepath.Ext(path)), nil)
	}
}
