package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/accompanist/midi"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
)

type Format string

const (
	Midi     Format = "midi"
	MusicXML Format = "musicxml"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "midi", "mid":
		return Midi, nil
	case "musicxml", "xml":
		return MusicXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Export writes the score to path in the given format, creating parent
// directories as needed.
func Export(score *model.Score, format Format, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	switch format {
	case Midi:
		return midi.WriteFile(path, score)
	case MusicXML:
		return musicxml.WriteFile(path, score)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
