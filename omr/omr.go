// Package omr runs optical music recognition over page images.
package omr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
)

type Recognizer interface {
	// Recognize reads the images in page order and writes one MusicXML
	// score to outputPath.
	Recognize(ctx context.Context, images []string, outputPath string) error
}

// Oemer runs the oemer command line tool once per image.
type Oemer struct {
	Command string
	Args    []string // appended after "<image> -o <dir>"
}

func NewOemer(command string, args []string) *Oemer {
	if command == "" {
		command = "oemer"
	}
	return &Oemer{Command: command, Args: args}
}

func (o *Oemer) Recognize(ctx context.Context, images []string, outputPath string) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to recognize")
	}

	tmp, err := os.MkdirTemp("", "omr-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	outputs := make([]string, len(images))
	for i, img := range images {
		outDir := filepath.Join(tmp, fmt.Sprintf("page_%d", i+1))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		if outputs[i], err = o.run(ctx, img, outDir); err != nil {
			return err
		}
		logger.Info("Recognized page", logger.Fields{"image": img, "page": i + 1, "of": len(images)})
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if len(outputs) == 1 {
		return copyFile(outputs[0], outputPath)
	}

	pages := make([]*model.Score, len(outputs))
	for i, out := range outputs {
		if pages[i], err = musicxml.ReadFile(out); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return musicxml.WriteFile(outputPath, musicxml.Concat(pages...))
}

func (o *Oemer) run(ctx context.Context, image, outDir string) (string, error) {
	args := append([]string{image, "-o", outDir}, o.Args...)
	cmd := exec.CommandContext(ctx, o.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", o.Command, image, err, lastLine(stderr.String()))
	}
	return findOutput(outDir, image)
}

// findOutput prefers <stem>.musicxml and falls back to the only MusicXML
// file oemer left in dir.
func findOutput(dir, image string) (string, error) {
	want := filepath.Join(dir, file.Stem(image)+".musicxml")
	if _, err := os.Stat(want); err == nil {
		return want, nil
	}
	var found []string
	for _, pattern := range []string{"*.musicxml", "*.xml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", err
		}
		found = append(found, matches...)
	}
	if len(found) != 1 {
		return "", fmt.Errorf("expected one MusicXML output for %s, found %d", image, len(found))
	}
	return found[0], nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
