package musicxml

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const q = constants.TicksPerQuarter

func TestReadFile(t *testing.T) {
	score, err := ReadFile(filepath.Join("testdata", "duet.musicxml"))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("Little Duet", score.Title)
	assert.Equal("Anonymous", score.Composer)
	require.Len(t, score.Parts, 2)

	flute := score.Parts[0]
	assert.Equal("P1", flute.ID)
	assert.Equal("Flute", flute.Name)
	assert.Equal("Flute", flute.Instrument)
	assert.Equal(74, flute.MidiProgram)
	require.Len(t, flute.Measures, 2)
	assert.Equal(&model.TimeSignature{Beats: 4, BeatType: 4}, flute.Measures[0].Time)

	m1 := flute.Measures[0].Elements
	require.Len(t, m1, 3, "grace note is skipped")
	assert.Equal(model.Element{Kind: model.NoteKind, Offset: 0, Duration: 2 * q, Voice: 1,
		Pitches: []model.Pitch{{Step: "E", Octave: 5}}}, m1[0])
	assert.Equal(model.Pitch{Step: "F", Alter: 1, Octave: 5}, m1[1].Pitches[0])
	assert.Equal(int64(2*q), m1[1].Offset)
	assert.Equal(int64(3*q/2), m1[1].Duration)
	assert.Equal(model.RestKind, m1[2].Kind)
	assert.Equal(int64(7*q/2), m1[2].Offset)

	guitar := score.Parts[1]
	assert.Equal("Guitar", guitar.Name)
	g1 := guitar.Measures[0].Elements
	require.Len(t, g1, 2)
	assert.Equal(model.ChordKind, g1[0].Kind)
	assert.Equal([]model.Pitch{{Step: "C", Octave: 4}, {Step: "E", Octave: 4}, {Step: "G", Octave: 4}}, g1[0].Pitches)
	assert.Equal(int64(4*q), g1[0].Duration)
	assert.Equal(2, g1[1].Voice)
	assert.Equal(int64(2*q), g1[1].Offset, "backup then forward")
	assert.Equal(model.Pitch{Step: "B", Alter: -1, Octave: 3}, g1[1].Pitches[0])
	assert.Equal(model.RestKind, guitar.Measures[1].Elements[0].Kind)
}

func TestReadRejectsTimewise(t *testing.T) {
	_, err := Read(strings.NewReader(`<score-timewise version="3.1"></score-timewise>`))
	assert.ErrorIs(t, err, ErrNotPartwise)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.musicxml"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteThenRead(t *testing.T) {
	original, err := ReadFile(filepath.Join("testdata", "duet.musicxml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, original))
	assert.Contains(t, buf.String(), "<!DOCTYPE score-partwise")
	assert.Contains(t, buf.String(), "<chord></chord>")

	again, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestWriteMeasureRest(t *testing.T) {
	score := &model.Score{Parts: []model.Part{{
		ID: "P1",
		Measures: []model.Measure{{
			Number:   1,
			Time:     &model.TimeSignature{Beats: 4, BeatType: 4},
			Elements: []model.Element{{Kind: model.RestKind, Duration: 4 * q, Voice: 1}},
		}},
	}}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, score))
	out := buf.String()

	assert := assert.New(t)
	assert.Contains(out, `<rest measure="yes"></rest>`)
	assert.Contains(out, "<divisions>1</divisions>")
	assert.Contains(out, "<type>whole</type>")
	assert.Contains(out, "<part-name>Part 1</part-name>")
}

func TestNoteType(t *testing.T) {
	cases := []struct {
		ticks int64
		name  string
		dots  int
	}{
		{4 * q, "whole", 0},
		{3 * q, "half", 1},
		{q, "quarter", 0},
		{7 * q / 4, "quarter", 2},
		{q / 4, "16th", 0},
		{q / 3, "", 0},
	}
	for _, c := range cases {
		name, dots := noteType(c.ticks)
		assert.Equal(t, c.name, name, "ticks %d", c.ticks)
		assert.Equal(t, c.dots, dots, "ticks %d", c.ticks)
	}
}

func TestReadCompressed(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "duet.musicxml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "duet.mxl")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<container><rootfiles><rootfile full-path="score/duet.xml" media-type="application/vnd.recordare.musicxml+xml"/></rootfiles></container>`))
	require.NoError(t, err)
	w, err = zw.Create("score/duet.xml")
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	score, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Little Duet", score.Title)
	assert.Len(t, score.Parts, 2)
}

func TestConcat(t *testing.T) {
	page := func(numbers ...int) *model.Score {
		var ms []model.Measure
		for _, n := range numbers {
			ms = append(ms, model.Measure{Number: n})
		}
		return &model.Score{Parts: []model.Part{{ID: "P1", Name: "Voice", Measures: ms}}}
	}
	first := page(1, 2)
	first.Title = "Song"
	second := page(1, 2, 3)
	second.Parts = append(second.Parts, model.Part{ID: "P2", Measures: []model.Measure{{Number: 1}}})

	joined := Concat(first, nil, second)

	assert := assert.New(t)
	assert.Equal("Song", joined.Title)
	require.Len(t, joined.Parts, 2)
	assert.Len(joined.Parts[0].Measures, 5)
	assert.Equal(5, joined.Parts[0].Measures[4].Number)
	assert.Equal("Voice", joined.Parts[0].Name)
	assert.Len(joined.Parts[1].Measures, 1)
	assert.Len(first.Parts[0].Measures, 2, "inputs are not modified")
}
