package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImagePixels bounds the decoded size of an image handed to OCR. Phone
// photos of a card sit well below it.
const MaxImagePixels = 25_000_000

// ErrImageTooLarge is returned when an image header declares more pixels than
// MaxImagePixels. The check runs before any pixel data is decoded.
var ErrImageTooLarge = errors.New("image dimensions exceed OCR limit")

// PreprocessImage decodes an uploaded photo (jpeg, png, gif, bmp, tiff, webp),
// reduces it to an 8-bit luminance plane with its contrast stretched, and
// returns PNG bytes ready for tesseract.
func PreprocessImage(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid image data: %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	gray := luminance(img)
	stretchContrast(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// luminance returns a fresh grayscale copy of img anchored at the origin.
// JPEG and grayscale sources already carry a luma plane and are copied row by
// row; everything else goes through the BT.601 weights.
func luminance(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch src := img.(type) {
	case *image.YCbCr:
		for y := 0; y < bounds.Dy(); y++ {
			off := src.YOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+bounds.Dx()], src.Y[off:off+bounds.Dx()])
		}
	case *image.Gray:
		for y := 0; y < bounds.Dy(); y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+bounds.Dx()], src.Pix[off:off+bounds.Dx()])
		}
	default:
		for y := 0; y < bounds.Dy(); y++ {
			row := gray.Pix[y*gray.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				row[x] = uint8(((299*r + 587*g + 114*b) / 1000) >> 8)
			}
		}
	}
	return gray
}

// stretchContrast maps the 1st..99th percentile range onto 0..255 in place.
// Flat images are left alone.
func stretchContrast(gray *image.Gray) {
	var histogram [256]int
	for _, v := range gray.Pix {
		histogram[v]++
	}

	threshold := len(gray.Pix) / 100
	low, high := 0, 255
	for count, i := 0, 0; i < 256; i++ {
		count += histogram[i]
		if count >= threshold {
			low = i
			break
		}
	}
	for count, i := 0, 255; i >= 0; i-- {
		count += histogram[i]
		if count >= threshold {
			high = i
			break
		}
	}
	if high <= low {
		return
	}

	var lut [256]uint8
	scale := 255.0 / float64(high-low)
	for i := range lut {
		switch {
		case i <= low:
			lut[i] = 0
		case i >= high:
			lut[i] = 255
		default:
			lut[i] = uint8(float64(i-low) * scale)
		}
	}
	for i, v := range gray.Pix {
		gray.Pix[i] = lut[v]
	}
}
