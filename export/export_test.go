package export

import (
	"path/filepath"
	"testing"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/midi"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score() *model.Score {
	return &model.Score{Parts: []model.Part{{
		ID:   "P1",
		Name: "Piano",
		Measures: []model.Measure{{Number: 1, Elements: []model.Element{{
			Kind:     model.ChordKind,
			Duration: constants.WholeNote,
			Voice:    1,
			Pitches:  []model.Pitch{{Step: "C", Octave: 4}, {Step: "G", Octave: 4}},
		}}}},
	}}}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"midi": Midi, "MID": Midi, "musicxml": MusicXML, " xml ": MusicXML}
	for in, want := range cases {
		got, err := ParseFormat(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportBothFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	midPath := filepath.Join(dir, "song.mid")
	xmlPath := filepath.Join(dir, "song.musicxml")

	require.NoError(t, Export(score(), Midi, midPath))
	require.NoError(t, Export(score(), MusicXML, xmlPath))

	s, err := midi.ReadMidiFile(midPath)
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 2)

	back, err := musicxml.ReadFile(xmlPath)
	require.NoError(t, err)
	assert.Equal(t, "Piano", back.Parts[0].Name)
	assert.Equal(t, model.ChordKind, back.Parts[0].Measures[0].Elements[0].Kind)
}

func TestExportUnknownFormat(t *testing.T) {
	err := Export(score(), Format("wav"), filepath.Join(t.TempDir(), "x.wav"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
