package queue

import (
	"errors"

	"github.com/phambaophuc/imgresize/pkg/utils"
)

var ErrJobsDisabled = errors.New("resize jobs are disabled: JOBS_BASE_DIR is not set")

// ConfinePaths resolves a job's source file and output directory inside
// baseDir. Relative paths are taken relative to baseDir.
func ConfinePaths(baseDir, sourcePath, outputDir string) (string, string, error) {
	if baseDir == "" {
		return "", "", ErrJobsDisabled
	}

	source, err := utils.WithinDir(baseDir, sourcePath)
	if err != nil {
		return "", "", err
	}
	if outputDir == "" {
		return source, "", nil
	}

	output, err := utils.WithinDir(baseDir, outputDir)
	if err != nil {
		return "", "", err
	}
	return source, output, nil
}
