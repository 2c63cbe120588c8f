package service

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/TheAXPerience/ScrapPages/internal/validation"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	PreviewMaxSize = 256
	PictureMaxSize = 1024
	JPEGQuality    = 82
	WebPQuality    = 70
)

// makePreview renders a WebP preview no larger than PreviewMaxSize on either edge.
func makePreview(data []byte) ([]byte, error) {
	src, _, err := validation.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode preview source: %w", err)
	}
	return encodeWebP(resizeToFit(src, PreviewMaxSize, PreviewMaxSize), WebPQuality)
}

// downscalePicture shrinks pictures whose long edge exceeds PictureMaxSize and
// re-encodes them in their source format. Smaller pictures are returned as is.
func downscalePicture(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode picture config: %w", err)
	}
	if cfg.Width <= PictureMaxSize && cfg.Height <= PictureMaxSize {
		return data, nil
	}

	src, _, err := validation.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode picture: %w", err)
	}
	resized := resizeToFit(src, PictureMaxSize, PictureMaxSize)

	switch format {
	case "png":
		return encodePNG(resized)
	case "gif":
		return encodeGIF(resized)
	default:
		return encodeJPEG(resized, JPEGQuality)
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeGIF(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := gif.Encode(buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
