// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
)

func fixture(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

// PNGBytes returns a valid PNG of the given size.
func PNGBytes(w, h int) []byte {
	buf := bytes.NewBuffer(nil)
	_ = png.Encode(buf, fixture(w, h))
	return buf.Bytes()
}

// JPEGBytes returns a valid JPEG of the given size.
func JPEGBytes(w, h int) []byte {
	buf := bytes.NewBuffer(nil)
	_ = jpeg.Encode(buf, fixture(w, h), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

// GIFBytes returns a valid GIF of the given size.
func GIFBytes(w, h int) []byte {
	buf := bytes.NewBuffer(nil)
	_ = gif.Encode(buf, fixture(w, h), nil)
	return buf.Bytes()
}

// CorruptPNGBytes has a PNG signature followed by garbage.
func CorruptPNGBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), []byte("definitely not an image body")...)
}

// PNGHeader returns a PNG signature and IHDR chunk claiming a w x h 8-bit
// grayscale image with no pixel data, enough for image.DecodeConfig.
func PNGHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; color type, compression, filter and interlace stay 0

	buf := bytes.NewBufferString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}
