package musicxml

import "encoding/xml"

const docType = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

type scorePartwise struct {
	XMLName        xml.Name        `xml:"score-partwise"`
	Version        string          `xml:"version,attr,omitempty"`
	Work           *work           `xml:"work,omitempty"`
	MovementTitle  string          `xml:"movement-title,omitempty"`
	Identification *identification `xml:"identification,omitempty"`
	PartList       partList        `xml:"part-list"`
	Parts          []xmlPart       `xml:"part"`
}

type work struct {
	Title string `xml:"work-title,omitempty"`
}

type identification struct {
	Creators []creator `xml:"creator"`
}

type creator struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type partList struct {
	ScoreParts []scorePart `xml:"score-part"`
}

type scorePart struct {
	ID              string            `xml:"id,attr"`
	Name            string            `xml:"part-name"`
	Instruments     []scoreInstrument `xml:"score-instrument"`
	MidiInstruments []midiInstrument  `xml:"midi-instrument"`
}

type scoreInstrument struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"instrument-name"`
}

type midiInstrument struct {
	ID      string `xml:"id,attr"`
	Channel int    `xml:"midi-channel,omitempty"`
	Program int    `xml:"midi-program,omitempty"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number   string        `xml:"number,attr"`
	Implicit string        `xml:"implicit,attr,omitempty"`
	Items    []measureItem `xml:",any"`
}

// measureItem is the union of the measure children we read. XMLName
// tells which one it is.
type measureItem struct {
	XMLName xml.Name

	// attributes
	Divisions float64   `xml:"divisions"`
	Times     []xmlTime `xml:"time"`

	// note, backup, forward
	Grace    *struct{} `xml:"grace"`
	Chord    *struct{} `xml:"chord"`
	Pitch    *xmlPitch `xml:"pitch"`
	Rest     *xmlRest  `xml:"rest"`
	Duration float64   `xml:"duration"`
	Voice    string    `xml:"voice"`
}

type xmlTime struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

type xmlPitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter,omitempty"`
	Octave int     `xml:"octave"`
}

type xmlRest struct {
	Measure string `xml:"measure,attr,omitempty"`
}

// output-only measure children, marshaled in order

type outMeasure struct {
	Number   string        `xml:"number,attr"`
	Implicit string        `xml:"implicit,attr,omitempty"`
	Items    []interface{} `xml:",any"`
}

type outPart struct {
	ID       string       `xml:"id,attr"`
	Measures []outMeasure `xml:"measure"`
}

type outScore struct {
	XMLName        xml.Name        `xml:"score-partwise"`
	Version        string          `xml:"version,attr"`
	Work           *work           `xml:"work,omitempty"`
	Identification *identification `xml:"identification,omitempty"`
	PartList       partList        `xml:"part-list"`
	Parts          []outPart       `xml:"part"`
}

type outAttributes struct {
	XMLName   xml.Name `xml:"attributes"`
	Divisions int64    `xml:"divisions,omitempty"`
	Time      *xmlTime `xml:"time,omitempty"`
}

type outNote struct {
	XMLName  xml.Name   `xml:"note"`
	Chord    *struct{}  `xml:"chord,omitempty"`
	Pitch    *xmlPitch  `xml:"pitch,omitempty"`
	Rest     *xmlRest   `xml:"rest,omitempty"`
	Duration int64      `xml:"duration"`
	Voice    int        `xml:"voice,omitempty"`
	Type     string     `xml:"type,omitempty"`
	Dots     []struct{} `xml:"dot"`
}

type outShift struct {
	XMLName  xml.Name
	Duration int64 `xml:"duration"`
}

// compressed .mxl container
type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}
