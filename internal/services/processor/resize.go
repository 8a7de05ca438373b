package processor

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// ParseFilter maps a filter name from configuration to a resampling filter.
// An empty name selects Lanczos.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}

	filter, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resize filter %q", name)
	}
	return filter, nil
}

func (p *ImageProcessor) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, max(1, width), max(1, height), p.filter)
}
