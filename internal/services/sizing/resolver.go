package sizing

import (
	"errors"
	"fmt"
	"math"

	"github.com/phambaophuc/imgresize/internal/models"
)

// ProportionTolerance is the relative tolerance used when comparing two
// width/height proportions.
const ProportionTolerance = 1e-9

const (
	DefaultMaxSide   = 16384
	DefaultMaxPixels = 50_000_000
)

var (
	ErrNoParameters       = errors.New("no scale, width or height given")
	ErrInvalidCombination = errors.New("scale cannot be combined with width or height")
	ErrNegativeParameter  = errors.New("numeric parameters must be positive")
	ErrDimensionTooLarge  = errors.New("output size is too large")
)

// Dimensions is a width/height pair. Computed sizes may be fractional until
// converted with Pixels.
type Dimensions struct {
	Width  float64
	Height float64
}

// Proportion is width divided by height.
func (d Dimensions) Proportion() float64 {
	return d.Width / d.Height
}

// Limits bounds the output size. Zero fields fall back to the defaults.
type Limits struct {
	MaxSide   int
	MaxPixels int64
}

func (l Limits) maxSide() float64 {
	if l.MaxSide > 0 {
		return float64(l.MaxSide)
	}
	return DefaultMaxSide
}

func (l Limits) maxPixels() float64 {
	if l.MaxPixels > 0 {
		return float64(l.MaxPixels)
	}
	return DefaultMaxPixels
}

// Pixels rounds both sides to whole pixels, never below one. Sides that are
// not finite or exceed the limits are rejected before any conversion to int.
func (d Dimensions) Pixels(limits Limits) (int, int, error) {
	width, height := math.Max(1, math.Round(d.Width)), math.Max(1, math.Round(d.Height))

	if math.IsInf(width, 0) || math.IsInf(height, 0) || math.IsNaN(width) || math.IsNaN(height) {
		return 0, 0, fmt.Errorf("%w: %vx%v is not a finite size", ErrDimensionTooLarge, d.Width, d.Height)
	}
	if side := limits.maxSide(); width > side || height > side {
		return 0, 0, fmt.Errorf("%w: %.0fx%.0f exceeds %.0f pixels per side", ErrDimensionTooLarge, width, height, side)
	}
	if total := limits.maxPixels(); width*height > total {
		return 0, 0, fmt.Errorf("%w: %.0fx%.0f exceeds %.0f pixels in total", ErrDimensionTooLarge, width, height, total)
	}

	return int(width), int(height), nil
}

type Mode int

const (
	ModeScale Mode = iota + 1
	ModeWidth
	ModeHeight
	ModeWidthHeight
)

func (m Mode) String() string {
	switch m {
	case ModeScale:
		return "scale"
	case ModeWidth:
		return "width"
	case ModeHeight:
		return "height"
	case ModeWidthHeight:
		return "width+height"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of a successful Resolve. ProportionChanged is the
// non-fatal warning for width+height requests that distort the image.
type Resolution struct {
	Size              Dimensions
	Mode              Mode
	ProportionChanged bool
}

// ModeOf maps which parameters are present to a resize mode.
func ModeOf(req models.ResizeRequest) (Mode, error) {
	hasScale, hasWidth, hasHeight := req.Scale != nil, req.Width != nil, req.Height != nil

	switch {
	case hasScale && (hasWidth || hasHeight):
		return 0, ErrInvalidCombination
	case hasScale:
		return ModeScale, nil
	case hasWidth && hasHeight:
		return ModeWidthHeight, nil
	case hasWidth:
		return ModeWidth, nil
	case hasHeight:
		return ModeHeight, nil
	default:
		return 0, ErrNoParameters
	}
}

// Validate checks that every supplied parameter is strictly positive.
func Validate(req models.ResizeRequest) error {
	params := []struct {
		name  string
		value *float64
	}{
		{"scale", req.Scale},
		{"width", req.Width},
		{"height", req.Height},
	}

	for _, p := range params {
		if p.value == nil {
			continue
		}
		// !(v > 0) also rejects NaN
		if !(*p.value > 0) {
			return fmt.Errorf("%w: %s is %v", ErrNegativeParameter, p.name, *p.value)
		}
	}
	return nil
}

// Resolve computes the output size for an image of the given original size.
func Resolve(original Dimensions, req models.ResizeRequest) (Resolution, error) {
	if !(original.Width > 0) || !(original.Height > 0) {
		return Resolution{}, fmt.Errorf("invalid original size %vx%v", original.Width, original.Height)
	}

	if err := Validate(req); err != nil {
		return Resolution{}, err
	}

	mode, err := ModeOf(req)
	if err != nil {
		return Resolution{}, err
	}

	proportion := original.Proportion()
	res := Resolution{Mode: mode}

	switch mode {
	case ModeScale:
		res.Size = Dimensions{Width: *req.Scale * original.Width, Height: *req.Scale * original.Height}
	case ModeWidth:
		res.Size = Dimensions{Width: *req.Width, Height: *req.Width / proportion}
	case ModeHeight:
		res.Size = Dimensions{Width: math.RoundToEven(*req.Height * proportion), Height: *req.Height}
	case ModeWidthHeight:
		// the literal request wins even when it distorts the image
		res.Size = Dimensions{Width: *req.Width, Height: *req.Height}
		res.ProportionChanged = !ProportionsEqual(res.Size.Proportion(), proportion)
	}

	return res, nil
}

// ProportionsEqual reports whether a and b are equal within ProportionTolerance.
func ProportionsEqual(a, b float64) bool {
	return math.Abs(a-b) <= ProportionTolerance*math.Max(math.Abs(a), math.Abs(b))
}
