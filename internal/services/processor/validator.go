package processor

import (
	"fmt"

	"github.com/phambaophuc/imgresize/pkg/utils"
)

// ValidateUpload rejects uploads that are too large or not an image at all.
func (p *ImageProcessor) ValidateUpload(data []byte, maxSize int64) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	if !utils.IsValidImageType(data) {
		return fmt.Errorf("%w: unrecognised file type", ErrUnreadableImage)
	}

	return nil
}
