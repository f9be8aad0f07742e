package chord

import (
	"testing"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const q = constants.TicksPerQuarter

var (
	c4 = model.Pitch{Step: "C", Octave: 4}
	e4 = model.Pitch{Step: "E", Octave: 4}
	g4 = model.Pitch{Step: "G", Octave: 4}
	c3 = model.Pitch{Step: "C", Octave: 3}
)

func note(offset, dur int64, p model.Pitch) model.Element {
	return model.Element{Kind: model.NoteKind, Offset: offset, Duration: dur, Voice: 1, Pitches: []model.Pitch{p}}
}

func TestCreateChordKey(t *testing.T) {
	assert := assert.New(t)
	notes := []uint8{67, 60, 64}
	assert.Equal("60-64-67", CreateChordKey(notes))
	assert.Equal([]uint8{67, 60, 64}, notes, "input must not be reordered")
	assert.Equal("", CreateChordKey(nil))
	assert.Equal("60-64-67", KeyOf([]model.Pitch{g4, c4, e4}))
}

func TestChordifyCollapsesPartsIntoChords(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{ID: "P1", Measures: []model.Measure{{Number: 1, Elements: []model.Element{
			note(0, 2*q, e4),
			note(2*q, 2*q, g4),
		}}}},
		{ID: "P2", Measures: []model.Measure{{Number: 1, Elements: []model.Element{
			note(0, 4*q, c3),
		}}}},
	}}

	view := Chordify(score)

	assert := assert.New(t)
	assert.Len(view, 1)
	elems := view[0].Elements
	assert.Len(elems, 2)
	assert.Equal(model.ChordKind, elems[0].Kind)
	assert.Equal(int64(0), elems[0].Offset)
	assert.Equal([]model.Pitch{c3, e4}, elems[0].Pitches)
	assert.Equal(model.ChordKind, elems[1].Kind)
	assert.Equal(int64(2*q), elems[1].Offset)
	assert.Equal([]model.Pitch{c3, g4}, elems[1].Pitches)
}

func TestChordifyNeverPromotesSingleNotes(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Number: 1, Elements: []model.Element{
			note(0, q, c4),
			{Kind: model.RestKind, Offset: q, Duration: 3 * q},
		}}}},
	}}

	view := Chordify(score)

	assert := assert.New(t)
	assert.Len(view, 1)
	assert.Len(view[0].Elements, 1)
	assert.Equal(model.NoteKind, view[0].Elements[0].Kind)
}

func TestChordifyMergesUnisons(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Elements: []model.Element{note(0, 4*q, c4)}}}},
		{Measures: []model.Measure{{Elements: []model.Element{note(0, 4*q, c4)}}}},
	}}

	view := Chordify(score)
	assert.Equal(t, model.NoteKind, view[0].Elements[0].Kind)
}

func TestChordifyUsesLongestPart(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{Measures: make([]model.Measure, 1)},
		{Measures: make([]model.Measure, 3)},
	}}

	view := Chordify(score)
	assert.Len(t, view, 3)
	assert.Equal(t, 3, view[2].Number)
}

func TestChordifyDoesNotMutateScore(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Number: 1, Elements: []model.Element{
			{Kind: model.ChordKind, Duration: 4 * q, Pitches: []model.Pitch{g4, c4}},
		}}}},
	}}
	before := score.Clone()

	Chordify(score)
	assert.Equal(t, before, score)
}

func TestFromSMF(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var melody smf.Track
	melody.Add(0, midi.NoteOn(0, 67, 100))
	melody.Add(480, midi.NoteOff(0, 67))
	melody.Close(0)

	var chords smf.Track
	chords.Add(0, midi.NoteOn(1, 60, 90))
	chords.Add(0, midi.NoteOn(1, 64, 90))
	chords.Add(960, midi.NoteOn(1, 60, 0))
	chords.Add(0, midi.NoteOff(1, 64))
	chords.Close(0)

	assert := assert.New(t)
	assert.NoError(s.Add(melody))
	assert.NoError(s.Add(chords))

	events := FromSMF(s)
	assert.Equal([]model.ChordEvent{
		{TicksOffset: 0, Notes: model.Notes{60, 64, 67}},
		{TicksOffset: 480, Notes: model.Notes{60, 64}},
	}, events)
}
