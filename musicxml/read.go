package musicxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
)

var ErrNotPartwise = errors.New("not a score-partwise document")

// ReadFile parses a .musicxml/.xml file or a compressed .mxl archive.
func ReadFile(path string) (*model.Score, error) {
	if strings.EqualFold(filepath.Ext(path), ".mxl") {
		s, err := readCompressed(path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func readCompressed(path string) (*model.Score, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	rootPath := ""
	if cf, ok := files["META-INF/container.xml"]; ok {
		rc, err := cf.Open()
		if err != nil {
			return nil, err
		}
		var c container
		err = xml.NewDecoder(rc).Decode(&c)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("container.xml: %w", err)
		}
		if len(c.Rootfiles) > 0 {
			rootPath = c.Rootfiles[0].FullPath
		}
	}
	if rootPath == "" {
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "META-INF/") {
				continue
			}
			ext := strings.ToLower(filepath.Ext(f.Name))
			if ext == ".xml" || ext == ".musicxml" {
				rootPath = f.Name
				break
			}
		}
	}

	root, ok := files[rootPath]
	if !ok {
		return nil, fmt.Errorf("no score found in archive")
	}
	rc, err := root.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc)
}

// Read parses a score-partwise MusicXML document.
func Read(r io.Reader) (*model.Score, error) {
	var doc scorePartwise
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		var unexpected xml.UnmarshalError
		if errors.As(err, &unexpected) {
			return nil, fmt.Errorf("%w: %v", ErrNotPartwise, err)
		}
		return nil, err
	}

	score := &model.Score{Title: doc.MovementTitle}
	if doc.Work != nil && doc.Work.Title != "" {
		score.Title = doc.Work.Title
	}
	if doc.Identification != nil {
		for _, c := range doc.Identification.Creators {
			if c.Type == "composer" {
				score.Composer = strings.TrimSpace(c.Value)
				break
			}
		}
	}

	headers := make(map[string]scorePart, len(doc.PartList.ScoreParts))
	for _, sp := range doc.PartList.ScoreParts {
		headers[sp.ID] = sp
	}

	for _, xp := range doc.Parts {
		part := readPart(xp)
		if sp, ok := headers[xp.ID]; ok {
			part.Name = strings.TrimSpace(sp.Name)
			if len(sp.Instruments) > 0 {
				part.Instrument = strings.TrimSpace(sp.Instruments[0].Name)
			}
			if len(sp.MidiInstruments) > 0 {
				part.MidiProgram = sp.MidiInstruments[0].Program
			}
		}
		score.Parts = append(score.Parts, part)
	}
	return score, nil
}

func readPart(xp xmlPart) model.Part {
	part := model.Part{ID: xp.ID}
	divisions := 1.0
	for i, xm := range xp.Measures {
		m := model.Measure{Implicit: xm.Implicit == "yes"}
		if n, err := strconv.Atoi(strings.TrimSpace(xm.Number)); err == nil {
			m.Number = n
		} else {
			m.Number = i + 1
		}

		var pos int64
		last := -1
		for _, item := range xm.Items {
			switch item.XMLName.Local {
			case "attributes":
				if item.Divisions > 0 {
					divisions = item.Divisions
				}
				if ts, ok := readTime(item.Times); ok {
					m.Time = &ts
				}
			case "backup":
				pos -= toTicks(item.Duration, divisions)
				if pos < 0 {
					pos = 0
				}
			case "forward":
				pos += toTicks(item.Duration, divisions)
			case "note":
				if item.Grace != nil {
					continue
				}
				if item.Chord != nil && last >= 0 && item.Pitch != nil &&
					m.Elements[last].Kind != model.RestKind {
					prev := &m.Elements[last]
					prev.Pitches = append(prev.Pitches, readPitch(*item.Pitch))
					prev.Kind = model.ChordKind
					continue
				}
				e := model.Element{
					Kind:     model.RestKind,
					Offset:   pos,
					Duration: toTicks(item.Duration, divisions),
					Voice:    readVoice(item.Voice),
				}
				if item.Pitch != nil {
					e.Kind = model.NoteKind
					e.Pitches = []model.Pitch{readPitch(*item.Pitch)}
				}
				m.Elements = append(m.Elements, e)
				last = len(m.Elements) - 1
				pos += e.Duration
			}
		}
		part.Measures = append(part.Measures, m)
	}
	return part
}

func toTicks(duration, divisions float64) int64 {
	return int64(math.Round(duration * constants.TicksPerQuarter / divisions))
}

func readPitch(p xmlPitch) model.Pitch {
	return model.Pitch{
		Step:   strings.ToUpper(strings.TrimSpace(p.Step)),
		Alter:  int(math.Round(p.Alter)),
		Octave: p.Octave,
	}
}

func readVoice(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// readTime takes the first time signature; additive beats ("3+2") are summed.
func readTime(times []xmlTime) (model.TimeSignature, bool) {
	for _, t := range times {
		beatType, err := strconv.Atoi(strings.TrimSpace(t.BeatType))
		if err != nil || beatType <= 0 {
			continue
		}
		beats := 0
		for _, b := range strings.Split(t.Beats, "+") {
			n, err := strconv.Atoi(strings.TrimSpace(b))
			if err != nil {
				beats = 0
				break
			}
			beats += n
		}
		if beats > 0 {
			return model.TimeSignature{Beats: beats, BeatType: beatType}, true
		}
	}
	return model.TimeSignature{}, false
}
