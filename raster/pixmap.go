package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Pixmap is an opaque RGBA pixel buffer holding one rendered equation.
type Pixmap struct {
	img *image.RGBA
}

// NewPixmap creates a pixmap of the given dimensions filled with bg.
func NewPixmap(width, height int, bg color.Color) *Pixmap {
	p := &Pixmap{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	p.Clear(bg)
	return p
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.img.Rect.Dx()
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.img.Rect.Dy()
}

// Data returns the raw pixel data, 4 bytes per pixel in RGBA order.
func (p *Pixmap) Data() []uint8 {
	return p.img.Pix
}

// GetPixel returns the color of a single pixel. Pixels outside the
// pixmap are transparent.
func (p *Pixmap) GetPixel(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(p.img.Rect) {
		return color.RGBA{}
	}
	return p.img.RGBAAt(x, y)
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	pix := p.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = rgba.R
		pix[i+1] = rgba.G
		pix[i+2] = rgba.B
		pix[i+3] = rgba.A
	}
}

// ToImage returns the pixmap as an image.RGBA sharing its pixels.
func (p *Pixmap) ToImage() *image.RGBA {
	return p.img
}

// EncodePNG writes the pixmap as PNG.
func (p *Pixmap) EncodePNG(w io.Writer) error {
	return EncodePNG(w, p)
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := p.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y)
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return p.img.Rect
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}

// pngEncoder has a fixed compression level so the same pixels always
// encode to the same bytes.
var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// EncodePNG writes p as PNG. The encoder writes no metadata chunks.
func EncodePNG(w io.Writer, p *Pixmap) error {
	return pngEncoder.Encode(w, p.img)
}

func encodeBytes(p *Pixmap) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(p.Width() * p.Height() / 4)
	if err := EncodePNG(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
