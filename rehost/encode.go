package rehost

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	webpQuality = 85
	jpegQuality = 85
)

// variant describes one derived encoding. Zero bounds mean "source size".
type variant struct {
	suffix string
	maxW   int
	maxH   int // 0 = height follows aspect ratio
}

var variants = []variant{
	{suffix: ""},                              // full size, never upscaled
	{suffix: "-thumb", maxW: 400, maxH: 225},  // inside fit, no crop
	{suffix: "-medium", maxW: 800},            // width bound only
	{suffix: "-large", maxW: 1200},            // width bound only
}

// writeDerivatives decodes data and writes the WebP variant set plus the
// full-size JPEG fallback into the optimized dir. A decode failure fails the
// image; any single encode failure is logged and the rest still get written.
func (r *Rehoster) writeDerivatives(data []byte, base string) error {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	r.log.Debug().Str("format", format).Str("base", base).Msg("decoded source image")

	for _, v := range variants {
		resized := fitInside(img, v.maxW, v.maxH)
		dst := filepath.Join(r.cfg.OptimizedDir, base+v.suffix+".webp")
		if err := writeWebP(dst, resized); err != nil {
			r.log.Error().Err(err).Str("path", dst).Msg("encode webp variant failed")
		}
	}

	jpegPath := filepath.Join(r.cfg.OptimizedDir, base+".jpg")
	if err := writeJPEG(jpegPath, img); err != nil {
		r.log.Error().Err(err).Str("path", jpegPath).Msg("encode jpeg fallback failed")
	}
	return nil
}

// fitInside scales img down to fit within maxW x maxH, preserving aspect
// ratio and never enlarging. Zero bounds leave that dimension free; all-zero
// bounds return img unchanged.
func fitInside(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return img
	}

	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: webpQuality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
