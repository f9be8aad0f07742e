package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	PDF
	Image
	MusicXML
	Midi
)

var ErrUnsupportedInput = errors.New("unsupported input file")

var extKinds = map[string]Kind{
	".pdf":      PDF,
	".png":      Image,
	".jpg":      Image,
	".jpeg":     Image,
	".tif":      Image,
	".tiff":     Image,
	".bmp":      Image,
	".gif":      Image,
	".webp":     Image,
	".musicxml": MusicXML,
	".xml":      MusicXML,
	".mxl":      MusicXML,
	".mid":      Midi,
	".midi":     Midi,
}

// KindOf classifies a path by its extension, case-insensitively.
func KindOf(path string) Kind {
	return extKinds[strings.ToLower(filepath.Ext(path))]
}

// SheetKind returns PDF or Image for a pipeline input. Anything that is
// not a PDF is handed to the recognizer as an image, which reports
// inputs it cannot read.
func SheetKind(path string) Kind {
	if KindOf(path) == PDF {
		return PDF
	}
	return Image
}

// PagePath names the image for 0-based page i: page_1.png, page_2.png...
func PagePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("page_%d.png", i+1))
}

// Stem strips directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
