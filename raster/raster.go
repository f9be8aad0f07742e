// Package raster turns sheet-music inputs into page images the recognizer
// can read.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/util"
)

type Rasterizer interface {
	// Rasterize renders every page of pdfPath into outDir and returns the
	// image paths in page order.
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Pdftoppm shells out to poppler's pdftoppm.
type Pdftoppm struct {
	Command string
	DPI     int
}

func NewPdftoppm(command string, dpi int) *Pdftoppm {
	if command == "" {
		command = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = constants.DefaultRasterDPI
	}
	return &Pdftoppm{Command: command, DPI: dpi}
}

const rawPrefix = "raw"

func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	if !util.FileExists(pdfPath) {
		return nil, fmt.Errorf("pdf not found: %s", pdfPath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	// outDir may hold other files, so render beside them and only move
	// the finished pages in.
	tmp, err := os.MkdirTemp(outDir, ".pdftoppm-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	prefix := filepath.Join(tmp, rawPrefix)
	args := []string{"-png", "-r", strconv.Itoa(p.DPI), pdfPath, prefix}
	cmd := exec.CommandContext(ctx, p.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", p.Command, err, strings.TrimSpace(stderr.String()))
	}

	raw, err := pageImages(tmp)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s produced no pages for %s", p.Command, pdfPath)
	}

	pages := make([]string, len(raw))
	for i, src := range raw {
		pages[i] = file.PagePath(outDir, i)
		if err := os.Rename(src, pages[i]); err != nil {
			return nil, err
		}
	}
	logger.Info("Rasterized pdf", logger.Fields{"input": pdfPath, "pages": len(pages), "dpi": p.DPI})
	return pages, nil
}

// pageImages lists pdftoppm's raw-N.png outputs sorted by page number. The
// number is zero-padded to the page count width, so sort numerically.
func pageImages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, rawPrefix+"-*.png"))
	if err != nil {
		return nil, err
	}
	pageNum := func(path string) int {
		s := strings.TrimSuffix(filepath.Base(path), ".png")
		n, _ := strconv.Atoi(s[strings.LastIndex(s, "-")+1:])
		return n
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNum(matches[i]) < pageNum(matches[j])
	})
	return matches, nil
}
