package midi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/accompanist/chord"
	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

const q = constants.TicksPerQuarter

func testScore() *model.Score {
	return &model.Score{Title: "Test", Parts: []model.Part{
		{ID: "P1", Name: "Melody", Measures: []model.Measure{
			{Number: 1, Time: &model.TimeSignature{Beats: 3, BeatType: 4}, Elements: []model.Element{
				{Kind: model.NoteKind, Duration: q, Voice: 1, Pitches: []model.Pitch{{Step: "A", Octave: 4}}},
				{Kind: model.RestKind, Offset: q, Duration: 2 * q, Voice: 1},
			}},
			{Number: 2, Elements: []model.Element{
				{Kind: model.NoteKind, Duration: 3 * q, Voice: 1, Pitches: []model.Pitch{{Step: "B", Octave: 4}}},
			}},
		}},
		{ID: "P2", Name: "Piano", MidiProgram: 1, Measures: []model.Measure{
			{Number: 1, Elements: []model.Element{
				{Kind: model.ChordKind, Duration: 4 * q, Voice: 1, Pitches: []model.Pitch{
					{Step: "C", Octave: 4}, {Step: "E", Octave: 4}, {Step: "G", Octave: 4},
				}},
			}},
		}},
	}}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, WriteFile(path, testScore()))

	s, err := ReadMidiFile(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(s.Tracks, 3, "conductor + one track per part")
	assert.Equal(smf.MetricTicks(constants.MidiTicksPerQuarter), s.TimeFormat)

	events := chord.FromSMF(s)
	assert.Equal([]model.ChordEvent{
		{TicksOffset: 0, Notes: model.Notes{60, 64, 67, 69}},
		{TicksOffset: 480, Notes: model.Notes{60, 64, 67}},
		{TicksOffset: 1440, Notes: model.Notes{60, 64, 67, 71}},
		{TicksOffset: 1920, Notes: model.Notes{71}},
	}, events)
}

func TestFromScoreEmpty(t *testing.T) {
	s, err := FromScore(&model.Score{})
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 1)
}

func TestReadMidiFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadMidiFile(filepath.Join(dir, "missing.mid"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.mid")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not midi"), 0o644))
	_, err = ReadMidiFile(garbage)
	assert.Error(t, err)
}
