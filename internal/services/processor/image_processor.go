package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/phambaophuc/imgresize/internal/services/sizing"
	"github.com/phambaophuc/imgresize/pkg/utils"
	"go.uber.org/zap"
)

const DefaultQuality = 95

type ImageProcessor struct {
	filter  imaging.ResampleFilter
	quality int
	limits  sizing.Limits
	logger  *zap.Logger
}

func NewImageProcessor(cfg config.ResizeConfig, logger *zap.Logger) (*ImageProcessor, error) {
	filter, err := ParseFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	quality := cfg.JPEGQuality
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	return &ImageProcessor{
		filter:  filter,
		quality: quality,
		limits:  sizing.Limits{MaxSide: cfg.MaxOutputSide, MaxPixels: cfg.MaxOutputPixels},
		logger:  logger,
	}, nil
}

// target is a resolution already converted to pixels and checked against the
// output limits.
type target struct {
	sizing.Resolution
	width  int
	height int
}

// ProcessFile resizes the image at path and writes the result next to it, or
// into outputDir when one is given. Nothing is written unless every check
// passes.
func (p *ImageProcessor) ProcessFile(ctx context.Context, path string, req models.ResizeRequest, outputDir string) (*models.ResizedImage, error) {
	// parameter errors are reported before the image is even opened
	if err := sizing.Validate(req); err != nil {
		return nil, err
	}
	if _, err := sizing.ModeOf(req); err != nil {
		return nil, err
	}

	img, err := p.Open(path)
	if err != nil {
		return nil, err
	}

	res, err := p.resolve(img, req)
	if err != nil {
		return nil, err
	}

	width, height := res.width, res.height
	outputPath := utils.OutputPath(path, outputDir, width, height)

	if _, err := imaging.FormatFromFilename(outputPath); err != nil {
		return nil, fmt.Errorf("cannot write %s: %w", outputPath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	resized := p.Resize(img.Image, width, height)
	if err := p.Save(resized, outputPath); err != nil {
		return nil, err
	}

	p.logger.Debug("Image resized",
		zap.String("source", path),
		zap.String("output", outputPath),
		zap.Stringer("mode", res.Mode),
		zap.Int("width", width),
		zap.Int("height", height),
	)

	return &models.ResizedImage{
		SourcePath:        path,
		OutputPath:        outputPath,
		Width:             width,
		Height:            height,
		ProportionChanged: res.ProportionChanged,
		ProcessedAt:       time.Now(),
	}, nil
}

// ProcessBytes resizes an in-memory image and encodes it in its own format
// when that format can be written, PNG otherwise.
func (p *ImageProcessor) ProcessBytes(data []byte, req models.ResizeRequest) (*bytes.Buffer, imaging.Format, *models.ResizedImage, error) {
	if err := sizing.Validate(req); err != nil {
		return nil, 0, nil, err
	}
	if _, err := sizing.ModeOf(req); err != nil {
		return nil, 0, nil, err
	}

	img, err := p.Decode(bytes.NewReader(data), "upload")
	if err != nil {
		return nil, 0, nil, err
	}

	res, err := p.resolve(img, req)
	if err != nil {
		return nil, 0, nil, err
	}

	format := OutputFormat(data)

	buffer := &bytes.Buffer{}
	if err := p.Encode(buffer, p.Resize(img.Image, res.width, res.height), format); err != nil {
		return nil, 0, nil, err
	}

	return buffer, format, &models.ResizedImage{
		Width:             res.width,
		Height:            res.height,
		ProportionChanged: res.ProportionChanged,
		ProcessedAt:       time.Now(),
	}, nil
}

func (p *ImageProcessor) resolve(img *Image, req models.ResizeRequest) (target, error) {
	res, err := sizing.Resolve(img.Size(), req)
	if err != nil {
		return target{}, err
	}

	width, height, err := res.Size.Pixels(p.limits)
	if err != nil {
		return target{}, err
	}

	if res.ProportionChanged {
		p.logger.Warn("Requested width and height change the image proportions",
			zap.String("image", img.Name),
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Float64("original_proportion", img.Size().Proportion()),
		)
	}

	return target{Resolution: res, width: width, height: height}, nil
}
