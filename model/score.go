package model

import (
	"fmt"

	"github.com/jsphweid/accompanist/constants"
)

type ElementKind int

const (
	NoteKind ElementKind = iota
	ChordKind
	RestKind
)

func (k ElementKind) String() string {
	switch k {
	case NoteKind:
		return "note"
	case ChordKind:
		return "chord"
	case RestKind:
		return "rest"
	}
	return "unknown"
}

// Pitch is a spelled pitch. Alter is in semitones (-1 flat, 1 sharp).
type Pitch struct {
	Step   string
	Alter  int
	Octave int
}

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// MIDI returns the MIDI key number, C4 = 60.
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + stepSemitones[p.Step] + p.Alter
}

func (p Pitch) String() string {
	acc := ""
	switch {
	case p.Alter > 0:
		for i := 0; i < p.Alter; i++ {
			acc += "#"
		}
	case p.Alter < 0:
		for i := 0; i > p.Alter; i-- {
			acc += "b"
		}
	}
	return fmt.Sprintf("%s%s%d", p.Step, acc, p.Octave)
}

// Element is a note, chord or rest. Offset and Duration are ticks
// relative to the start of the enclosing measure.
type Element struct {
	Kind     ElementKind
	Offset   int64
	Duration int64
	Voice    int
	Pitches  []Pitch
}

func (e Element) End() int64 {
	return e.Offset + e.Duration
}

func (e Element) Clone() Element {
	c := e
	if e.Pitches != nil {
		c.Pitches = append([]Pitch(nil), e.Pitches...)
	}
	return c
}

type TimeSignature struct {
	Beats    int
	BeatType int
}

// Ticks is the nominal measure length for the signature.
func (ts TimeSignature) Ticks() int64 {
	if ts.Beats <= 0 || ts.BeatType <= 0 {
		return constants.WholeNote
	}
	return int64(ts.Beats) * constants.WholeNote / int64(ts.BeatType)
}

var CommonTime = TimeSignature{Beats: 4, BeatType: 4}

type Measure struct {
	Number   int
	Time     *TimeSignature
	Implicit bool
	Elements []Element
}

func (m Measure) Clone() Measure {
	c := m
	if m.Time != nil {
		ts := *m.Time
		c.Time = &ts
	}
	if m.Elements != nil {
		c.Elements = make([]Element, len(m.Elements))
		for i, e := range m.Elements {
			c.Elements[i] = e.Clone()
		}
	}
	return c
}

func (m Measure) contentEnd() int64 {
	var end int64
	for _, e := range m.Elements {
		if e.End() > end {
			end = e.End()
		}
	}
	return end
}

// Length is the measure duration under the effective time signature ts,
// extended to cover overfull content. Pickup measures are as long as
// their content.
func (m Measure) Length(ts TimeSignature) int64 {
	end := m.contentEnd()
	if m.Implicit && end > 0 {
		return end
	}
	nominal := ts.Ticks()
	if end > nominal {
		return end
	}
	return nominal
}

type Part struct {
	ID          string
	Name        string
	Instrument  string
	MidiProgram int
	Measures    []Measure
}

func (p Part) Clone() Part {
	c := p
	if p.Measures != nil {
		c.Measures = make([]Measure, len(p.Measures))
		for i, m := range p.Measures {
			c.Measures[i] = m.Clone()
		}
	}
	return c
}

// TimeAt returns the time signature in effect at measure index i.
func (p Part) TimeAt(i int) TimeSignature {
	ts := CommonTime
	for j := 0; j <= i && j < len(p.Measures); j++ {
		if p.Measures[j].Time != nil {
			ts = *p.Measures[j].Time
		}
	}
	return ts
}

// MeasureOffsets returns the absolute start tick of every measure.
func (p Part) MeasureOffsets() []int64 {
	offsets := make([]int64, len(p.Measures))
	ts := CommonTime
	var pos int64
	for i, m := range p.Measures {
		if m.Time != nil {
			ts = *m.Time
		}
		offsets[i] = pos
		pos += m.Length(ts)
	}
	return offsets
}

type Score struct {
	Title    string
	Composer string
	Parts    []Part
}

func (s *Score) Clone() *Score {
	c := &Score{Title: s.Title, Composer: s.Composer}
	if s.Parts != nil {
		c.Parts = make([]Part, len(s.Parts))
		for i, p := range s.Parts {
			c.Parts[i] = p.Clone()
		}
	}
	return c
}

// MeasureCount is the measure count of the longest part.
func (s *Score) MeasureCount() int {
	var n int
	for _, p := range s.Parts {
		if len(p.Measures) > n {
			n = len(p.Measures)
		}
	}
	return n
}

// ChannelFor maps a part index to a 0-based MIDI channel, skipping the
// General MIDI percussion channel.
func ChannelFor(partIndex int) uint8 {
	ch := partIndex % 15
	if ch >= 9 {
		ch++
	}
	return uint8(ch)
}
