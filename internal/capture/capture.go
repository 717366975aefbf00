// Package capture grabs a screen rectangle, binarizes it and runs OCR over it.
package capture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/corona10/goimagehash"
	"github.com/kbinani/screenshot"
	"github.com/vcaesar/imgo"

	"trait-roller/internal/apperr"
)

// DefaultThreshold separates the game's light trait text from the panel background.
const DefaultThreshold = 180

// Capturer grabs a screen rectangle.
type Capturer interface {
	Capture(rect image.Rectangle) (image.Image, error)
}

// Recognizer extracts text from an image.
type Recognizer interface {
	Text(img image.Image) (string, error)
}

// Screen captures from the real display.
type Screen struct{}

func (Screen) Capture(rect image.Rectangle) (image.Image, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("empty capture rectangle %v", rect)
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Binarize converts img to intensity and maps pixels strictly above
// threshold to white, everything else to black.
func Binarize(img image.Image, threshold uint8) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)

	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray
}

// Reader is the capture -> binarize -> OCR pipeline for one region.
type Reader struct {
	capturer  Capturer
	ocr       Recognizer
	threshold uint8
}

func NewReader(capturer Capturer, ocr Recognizer, threshold uint8) *Reader {
	return &Reader{capturer: capturer, ocr: ocr, threshold: threshold}
}

// Read returns the raw OCR text and the binarized image it was read from.
func (r *Reader) Read(rect image.Rectangle) (string, *image.Gray, error) {
	img, err := r.capturer.Capture(rect)
	if err != nil {
		return "", nil, apperr.NewCaptureFailure(err)
	}
	bin := Binarize(img, r.threshold)

	text, err := r.ocr.Text(bin)
	if err != nil {
		return "", bin, apperr.NewOCRFailure(err)
	}
	return text, bin, nil
}

// SavePreview writes what the roller will see, for checking the region after
// setting the anchor.
func SavePreview(path string, img image.Image) error {
	if err := imgo.Save(path, img); err != nil {
		return apperr.NewPersistenceFailure("write", path, err)
	}
	return nil
}

// Outline draws a 1px frame, used on the unbinarized preview.
func Outline(img image.Image, c color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for x := b.Min.X; x < b.Max.X; x++ {
		out.Set(x, b.Min.Y, c)
		out.Set(x, b.Max.Y-1, c)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		out.Set(b.Min.X, y, c)
		out.Set(b.Max.X-1, y, c)
	}
	return out
}

// ChangeDetector flags consecutive captures that look identical, which
// usually means the previous click did not land.
type ChangeDetector struct {
	last *goimagehash.ImageHash
}

// Changed reports whether img differs from the previous call's image.
// The first call always reports true.
func (d *ChangeDetector) Changed(img image.Image) (bool, error) {
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return true, err
	}
	prev := d.last
	d.last = h
	if prev == nil {
		return true, nil
	}
	dist, err := prev.Distance(h)
	if err != nil {
		return true, err
	}
	return dist > 0, nil
}

// Reset forgets the previous hash.
func (d *ChangeDetector) Reset() {
	d.last = nil
}
