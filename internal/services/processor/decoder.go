package processor

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/imgresize/internal/services/sizing"

	_ "golang.org/x/image/webp" // register WebP decoding
)

var ErrUnreadableImage = errors.New("file is not a readable image")

// Image is a decoded source image together with the name it was loaded from.
type Image struct {
	Image image.Image
	Name  string
}

func (i *Image) Size() sizing.Dimensions {
	bounds := i.Image.Bounds()
	return sizing.Dimensions{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
}

// Open decodes the image file at path, applying EXIF orientation.
func (p *ImageProcessor) Open(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return p.Decode(file, path)
}

func (p *ImageProcessor) Decode(r io.Reader, name string) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, name, err)
	}

	return &Image{Image: img, Name: name}, nil
}
