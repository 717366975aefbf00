package capture

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trait-roller/internal/apperr"
)

type fakeCapturer struct {
	img  image.Image
	err  error
	rect image.Rectangle
}

func (f *fakeCapturer) Capture(rect image.Rectangle) (image.Image, error) {
	f.rect = rect
	return f.img, f.err
}

type fakeOCR struct {
	text string
	err  error
	seen image.Image
}

func (f *fakeOCR) Text(img image.Image) (string, error) {
	f.seen = img
	return f.text, f.err
}

func grayImage(values ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(values), 1))
	copy(img.Pix, values)
	return img
}

func TestBinarizeThreshold(t *testing.T) {
	out := Binarize(grayImage(0, 179, 180, 181, 255), DefaultThreshold)

	assert.Equal(t, []uint8{0, 0, 0, 255, 255}, out.Pix)
}

func TestBinarizeColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 250, G: 250, B: 240, A: 255})
	img.Set(1, 0, color.RGBA{R: 40, G: 60, B: 80, A: 255})

	out := Binarize(img, DefaultThreshold)

	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
}

func TestReaderPassesBinarizedImageToOCR(t *testing.T) {
	capt := &fakeCapturer{img: grayImage(200, 10)}
	ocr := &fakeOCR{text: "Tough\nJogger"}
	r := NewReader(capt, ocr, DefaultThreshold)

	rect := image.Rect(10, 20, 310, 120)
	text, bin, err := r.Read(rect)

	require.NoError(t, err)
	assert.Equal(t, "Tough\nJogger", text)
	assert.Equal(t, rect, capt.rect)
	assert.Same(t, bin, ocr.seen)
	assert.Equal(t, []uint8{255, 0}, bin.Pix)
}

func TestReaderClassifiesFailures(t *testing.T) {
	r := NewReader(&fakeCapturer{err: errors.New("no display")}, &fakeOCR{}, DefaultThreshold)
	_, _, err := r.Read(image.Rect(0, 0, 1, 1))
	assert.True(t, apperr.IsCode(err, apperr.ErrCaptureFailure))

	r = NewReader(&fakeCapturer{img: grayImage(1)}, &fakeOCR{err: errors.New("no traineddata")}, DefaultThreshold)
	_, _, err = r.Read(image.Rect(0, 0, 1, 1))
	assert.True(t, apperr.IsCode(err, apperr.ErrOCRFailure))
}

func TestScreenRejectsEmptyRect(t *testing.T) {
	_, err := Screen{}.Capture(image.Rectangle{})
	assert.Error(t, err)
}

func gradient(w, h int, flip bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if flip {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestChangeDetector(t *testing.T) {
	var d ChangeDetector

	changed, err := d.Changed(gradient(64, 32, false))
	require.NoError(t, err)
	assert.True(t, changed, "first capture always counts as changed")

	changed, err = d.Changed(gradient(64, 32, false))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = d.Changed(gradient(64, 32, true))
	require.NoError(t, err)
	assert.True(t, changed)

	d.Reset()
	changed, _ = d.Changed(gradient(64, 32, true))
	assert.True(t, changed)
}

func TestOutlineAndSavePreview(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	framed := Outline(img, color.RGBA{R: 255, A: 255})

	assert.Equal(t, color.RGBA{R: 255, A: 255}, framed.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, framed.RGBAAt(7, 3))
	assert.Equal(t, color.RGBA{A: 255}, framed.RGBAAt(3, 2))

	path := filepath.Join(t.TempDir(), "region.png")
	require.NoError(t, SavePreview(path, framed))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
