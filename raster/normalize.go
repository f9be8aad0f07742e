package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/logger"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// converted to PNG before recognition
var convertible = map[string]bool{
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
}

// NormalizeImage returns a path to a PNG version of a TIFF, BMP, GIF or
// WebP image, written to outDir as <stem>.png. Any other input is returned
// as is for the recognizer to judge.
func NormalizeImage(path, outDir string) (string, error) {
	if !convertible[strings.ToLower(filepath.Ext(path))] {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(outDir, file.Stem(path)+".png")
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return "", fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	logger.Debug("Normalized image", logger.Fields{"input": path, "format": format, "output": dst})
	return dst, nil
}
