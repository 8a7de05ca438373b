package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/sizing"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, envLoaded := config.Load()

	logger, err := newLogger(cfg.LogLevel, stderr, false)
	if err != nil {
		fmt.Fprintln(stderr, "Error: failed to initialize logger:", err)
		return 1
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Debug("No .env file found, using environment variables directly")
	}

	a := &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	rootCmd := a.rootCommand()
	rootCmd.SetArgs(normalizeArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", explain(err))
		return 1
	}
	return 0
}

// explain turns resize failures into a message telling the user what to change.
func explain(err error) string {
	switch {
	case errors.Is(err, sizing.ErrNoParameters):
		return "no size parameters given. Restart with --scale, or with one or both of --width and --height"
	case errors.Is(err, sizing.ErrInvalidCombination):
		return "cannot resize with this combination of parameters. Use either --scale alone, or one or both of --width and --height"
	case errors.Is(err, sizing.ErrNegativeParameter):
		return err.Error() + ". Restart with positive numeric parameters"
	case errors.Is(err, sizing.ErrDimensionTooLarge):
		return err.Error() + ". Use a smaller scale, width or height"
	case errors.Is(err, processor.ErrUnreadableImage):
		return err.Error() + ". Maybe it is not an image at all; try another file"
	default:
		return err.Error()
	}
}
