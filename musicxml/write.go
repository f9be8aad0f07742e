package musicxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/util"
)

// WriteFile writes the score as uncompressed MusicXML.
func WriteFile(path string, score *model.Score) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, score); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Write(w io.Writer, score *model.Score) error {
	doc := outScore{Version: "4.0"}
	if score.Title != "" {
		doc.Work = &work{Title: score.Title}
	}
	if score.Composer != "" {
		doc.Identification = &identification{Creators: []creator{{Type: "composer", Value: score.Composer}}}
	}

	for i, part := range score.Parts {
		id := part.ID
		if id == "" {
			id = fmt.Sprintf("P%d", i+1)
		}
		doc.PartList.ScoreParts = append(doc.PartList.ScoreParts, partHeader(id, i, part))
		doc.Parts = append(doc.Parts, writePart(id, part))
	}

	if _, err := io.WriteString(w, xml.Header+docType+"\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode musicxml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func partHeader(id string, index int, part model.Part) scorePart {
	name := part.Name
	if name == "" {
		name = fmt.Sprintf("Part %d", index+1)
	}
	sp := scorePart{ID: id, Name: name}
	if part.Instrument == "" && part.MidiProgram <= 0 {
		return sp
	}

	instrument := part.Instrument
	if instrument == "" {
		instrument = name
	}
	program := part.MidiProgram
	if program <= 0 {
		program = constants.PianoProgram
	}
	instID := id + "-I1"
	sp.Instruments = []scoreInstrument{{ID: instID, Name: instrument}}
	sp.MidiInstruments = []midiInstrument{{
		ID:      instID,
		Channel: int(model.ChannelFor(index)) + 1,
		Program: program,
	}}
	return sp
}

// scale finds the largest tick divisor shared by every offset and duration
// of the part so <divisions> stays small.
func scale(part model.Part) int64 {
	g := int64(constants.TicksPerQuarter)
	for _, m := range part.Measures {
		for _, e := range m.Elements {
			g = util.GCD(g, e.Offset)
			g = util.GCD(g, e.Duration)
		}
	}
	if g <= 0 {
		return 1
	}
	return g
}

func writePart(id string, part model.Part) outPart {
	out := outPart{ID: id}
	g := scale(part)
	for i, m := range part.Measures {
		number := m.Number
		if number == 0 {
			number = i + 1
		}
		om := outMeasure{Number: strconv.Itoa(number)}
		if m.Implicit {
			om.Implicit = "yes"
		}

		if i == 0 || m.Time != nil {
			attrs := outAttributes{}
			if i == 0 {
				attrs.Divisions = constants.TicksPerQuarter / g
			}
			if m.Time != nil {
				attrs.Time = &xmlTime{
					Beats:    strconv.Itoa(m.Time.Beats),
					BeatType: strconv.Itoa(m.Time.BeatType),
				}
			}
			om.Items = append(om.Items, attrs)
		}
		om.Items = append(om.Items, measureItems(m, part.TimeAt(i), g)...)
		out.Measures = append(out.Measures, om)
	}
	return out
}

func measureItems(m model.Measure, ts model.TimeSignature, g int64) []interface{} {
	byVoice := make(map[int][]model.Element)
	for _, e := range m.Elements {
		v := e.Voice
		if v <= 0 {
			v = 1
		}
		byVoice[v] = append(byVoice[v], e)
	}

	var items []interface{}
	var pos int64
	voices := util.GetKeys(byVoice)
	for vi, voice := range voices {
		elems := byVoice[voice]
		sort.SliceStable(elems, func(i, j int) bool { return elems[i].Offset < elems[j].Offset })
		if vi > 0 && pos > 0 {
			items = append(items, outShift{XMLName: xml.Name{Local: "backup"}, Duration: pos / g})
			pos = 0
		}
		for _, e := range elems {
			switch {
			case e.Offset > pos:
				items = append(items, outShift{XMLName: xml.Name{Local: "forward"}, Duration: (e.Offset - pos) / g})
			case e.Offset < pos:
				items = append(items, outShift{XMLName: xml.Name{Local: "backup"}, Duration: (pos - e.Offset) / g})
			}
			items = append(items, notes(e, voice, ts, g)...)
			pos = e.End()
		}
	}
	return items
}

func notes(e model.Element, voice int, ts model.TimeSignature, g int64) []interface{} {
	typ, dots := noteType(e.Duration)
	base := outNote{
		Duration: e.Duration / g,
		Voice:    voice,
		Type:     typ,
		Dots:     make([]struct{}, dots),
	}
	if e.Kind == model.RestKind || len(e.Pitches) == 0 {
		n := base
		n.Rest = &xmlRest{}
		if e.Offset == 0 && e.Duration == ts.Ticks() {
			n.Rest.Measure = "yes"
		}
		return []interface{}{n}
	}

	res := make([]interface{}, 0, len(e.Pitches))
	for i, p := range e.Pitches {
		n := base
		if i > 0 {
			n.Chord = &struct{}{}
		}
		n.Pitch = &xmlPitch{Step: p.Step, Alter: float64(p.Alter), Octave: p.Octave}
		res = append(res, n)
	}
	return res
}

var noteTypes = []struct {
	name  string
	ticks int64
}{
	{"breve", 8 * constants.TicksPerQuarter},
	{"whole", 4 * constants.TicksPerQuarter},
	{"half", 2 * constants.TicksPerQuarter},
	{"quarter", constants.TicksPerQuarter},
	{"eighth", constants.TicksPerQuarter / 2},
	{"16th", constants.TicksPerQuarter / 4},
	{"32nd", constants.TicksPerQuarter / 8},
	{"64th", constants.TicksPerQuarter / 16},
}

// noteType names a duration with up to two dots; tuplet durations get no type.
func noteType(duration int64) (string, int) {
	for _, nt := range noteTypes {
		for dots := 0; dots <= 2; dots++ {
			// base * (2 - 1/2^dots)
			d := nt.ticks*2 - nt.ticks/(1<<dots)
			if d == duration {
				return nt.name, dots
			}
		}
	}
	return "", 0
}
