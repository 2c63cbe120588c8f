package validation

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/models"
)

var scrapMIMETypes = map[string]string{
	"image/jpg":  models.FileTypeImage,
	"image/jpeg": models.FileTypeImage,
	"image/png":  models.FileTypeImage,
	"image/gif":  models.FileTypeImage,
	"text/plain": models.FileTypeText,
}

var pictureMIMETypes = map[string]struct{}{
	"image/png":  {},
	"image/jpg":  {},
	"image/jpeg": {},
}

// decodedImageTypes maps image.Decode format names to the content type stored
// with the file.
var decodedImageTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// MaxImagePixels caps width*height before an image is fully decoded.
const MaxImagePixels = 89_478_485

// ErrImageTooLarge is returned by DecodeImage for images over MaxImagePixels.
var ErrImageTooLarge = errors.New("image exceeds pixel limit")

var unsafeFilenameChars = regexp.MustCompile(`[^-\w.]`)

// Upload is a classified scrap file ready to be stored.
type Upload struct {
	FileType    string
	ContentType string
	Filename    string
}

// ClassifyUpload validates a scrap file by content type and, for images, by decoding it.
// Images are stored under the content type of their decoded format. Text
// files always get a .txt extension.
func ClassifyUpload(declaredType, filename string, data []byte) (*Upload, error) {
	contentType := ContentTypeOf(declaredType, data)
	fileType, ok := scrapMIMETypes[contentType]
	if !ok {
		return nil, fail(UnsupportedType, "Invalid file type uploaded: only accepts TXT, PNG, JPG, JPEG and GIF")
	}

	name := SanitizeFilename(filename)
	if fileType == models.FileTypeImage {
		_, format, err := DecodeImage(data)
		if err != nil {
			return nil, fail(CorruptImage, "Invalid; image file could not be verified")
		}
		decoded, ok := decodedImageTypes[format]
		if !ok {
			return nil, fail(UnsupportedType, "Invalid file type uploaded: only accepts TXT, PNG, JPG, JPEG and GIF")
		}
		contentType = decoded
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
	}

	return &Upload{FileType: fileType, ContentType: contentType, Filename: name}, nil
}

// ValidateProfilePicture accepts PNG and JPEG images that decode cleanly and
// returns the content type of the decoded format. A GIF declared as PNG is
// still a GIF.
func ValidateProfilePicture(declaredType string, data []byte) (string, error) {
	if _, ok := pictureMIMETypes[ContentTypeOf(declaredType, data)]; !ok {
		return "", fail(UnsupportedType, "Invalid file type; only accepts PNG and JPG")
	}
	_, format, err := DecodeImage(data)
	if err != nil {
		return "", fail(CorruptImage, "Invalid image file")
	}
	contentType := decodedImageTypes[format]
	if _, ok := pictureMIMETypes[contentType]; !ok {
		return "", fail(UnsupportedType, "Invalid file type; only accepts PNG and JPG")
	}
	return contentType, nil
}

// DecodeImage reads the image header first and refuses to decode anything
// larger than MaxImagePixels.
func DecodeImage(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, format, ErrImageTooLarge
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, err
	}
	return img, format, nil
}

// ContentTypeOf returns the bare, lower-cased media type of an upload. The
// declared type wins; sniffing is the fallback for missing or generic types.
func ContentTypeOf(declaredType string, data []byte) string {
	declared := normalizeContentType(declaredType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return normalizeContentType(http.DetectContentType(data))
}

// SanitizeFilename keeps the base name and strips characters unsafe for storage keys.
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

func normalizeContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return strings.ToLower(mediaType)
}
