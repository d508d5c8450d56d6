package helper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

// DefaultModelDir is used when no model directory is configured.
const DefaultModelDir = "./models"

// ModelPath returns the directory a model is cached in below modelDir.
func ModelPath(modelDir string, modelName string) string {
	if modelDir == "" {
		modelDir = DefaultModelDir
	}
	return filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
}

// PrepareModel returns the cached model path and downloads the model on first use.
func PrepareModel(modelDir string, modelName string, onnxFilePath string) (string, error) {
	if modelName == "" {
		return "", NewError("model preparation", errors.New("model name is empty"))
	}

	modelPath := ModelPath(modelDir, modelName)
	_, err := os.Stat(modelPath)
	if err == nil {
		return modelPath, nil
	}
	if !os.IsNotExist(err) {
		return "", NewError("model preparation", err)
	}

	parent := filepath.Dir(modelPath)
	if err := os.MkdirAll(parent, 0750); err != nil {
		return "", NewError("model preparation", fmt.Errorf("failed to create model directory: %w", err))
	}

	options := hugot.NewDownloadOptions()
	if onnxFilePath != "" {
		options.OnnxFilePath = onnxFilePath
	}
	downloaded, err := hugot.DownloadModel(modelName, parent, options)
	if err != nil {
		return "", NewError("model preparation", fmt.Errorf("failed to download model %s: %w", modelName, err))
	}

	return downloaded, nil
}
