package processor

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
)

// Save writes img to path in the format implied by its extension.
func (p *ImageProcessor) Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(p.quality)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

func (p *ImageProcessor) Encode(w io.Writer, img image.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(p.quality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// OutputFormat picks the encoding for a resized copy of data: the source
// format when it is writable, PNG otherwise (WebP can be read but not written).
func OutputFormat(data []byte) imaging.Format {
	kind, err := filetype.Match(data)
	if err != nil {
		return imaging.PNG
	}

	format, err := imaging.FormatFromExtension(kind.Extension)
	if err != nil {
		return imaging.PNG
	}
	return format
}

// ContentType is the MIME type served for an encoded format.
func ContentType(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}
