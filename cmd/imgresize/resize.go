package main

import (
	"fmt"

	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"github.com/spf13/cobra"
)

type resizeFlags struct {
	scale  float64
	width  int
	height int
	output string
	upload bool
}

func addResizeFlags(cmd *cobra.Command, flags *resizeFlags) {
	cmd.Flags().Float64VarP(&flags.scale, "scale", "s", 0, "Scale factor applied to both sides")
	cmd.Flags().IntVar(&flags.width, "width", 0, "Target width in pixels (also -wd)")
	cmd.Flags().IntVar(&flags.height, "height", 0, "Target height in pixels (also -hg)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Directory to write the resized image to")
	cmd.Flags().BoolVar(&flags.upload, "upload", false, "Also upload the result to Supabase storage")
}

// request builds the resize request from the flags the user actually gave.
func (f *resizeFlags) request(cmd *cobra.Command) models.ResizeRequest {
	var req models.ResizeRequest
	if cmd.Flags().Changed("scale") {
		req.Scale = models.Float(f.scale)
	}
	if cmd.Flags().Changed("width") {
		req.Width = models.Float(float64(f.width))
	}
	if cmd.Flags().Changed("height") {
		req.Height = models.Float(float64(f.height))
	}
	return req
}

func (a *app) newProcessor() (*processor.ImageProcessor, error) {
	return processor.NewImageProcessor(a.cfg.Resize, a.logger)
}

func (a *app) rootCommand() *cobra.Command {
	flags := &resizeFlags{}

	cmd := &cobra.Command{
		Use:   "imgresize <path>",
		Short: "Resize an image by scale, width, height, or width and height",
		Long: `Resize an image and save it as <name>_<width>x<height>.<ext>.

Give either --scale alone, or one or both of --width and --height. With only
one side given the other follows the original proportions.`,
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resize(cmd, args[0], flags)
		},
	}
	addResizeFlags(cmd, flags)

	cmd.AddCommand(a.serveCommand())
	cmd.AddCommand(a.workerCommand())
	cmd.AddCommand(a.enqueueCommand())

	return cmd
}

func (a *app) resize(cmd *cobra.Command, path string, flags *resizeFlags) error {
	store := storage.NewStorageService(a.cfg)
	defer store.Close()

	if flags.upload && !store.UploadEnabled() {
		return storage.ErrUploadDisabled
	}

	proc, err := a.newProcessor()
	if err != nil {
		return err
	}

	result, err := proc.ProcessFile(cmd.Context(), path, flags.request(cmd), flags.output)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Image was successfully resized. New image name %s\n", result.OutputPath)

	if flags.upload {
		url, err := store.UploadFile(cmd.Context(), result.OutputPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Uploaded to %s\n", url)
	}

	return nil
}
