// Package accompaniment derives a block-chord piano part from a score and
// merges it back into the score.
package accompaniment

import (
	"errors"
	"fmt"

	"github.com/jsphweid/accompanist/chord"
	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
)

var ErrMeasureMismatch = errors.New("accompaniment measure count does not match chordified score")

// Generate builds a piano part with one whole-note element per measure of
// the chordified score: the first chord of the measure with its exact
// pitch set, or a rest when the measure has no chord. Later chords in the
// same measure are dropped.
func Generate(score *model.Score) model.Part {
	part := model.Part{
		ID:          constants.AccompanimentPartID,
		Name:        constants.AccompanimentName,
		Instrument:  constants.AccompanimentName,
		MidiProgram: constants.PianoProgram,
	}

	for i, m := range chord.Chordify(score) {
		measure := model.Measure{Number: m.Number}
		if i == 0 {
			ts := model.CommonTime
			measure.Time = &ts
		}

		first, ok := firstChord(m)
		if !ok {
			measure.Elements = []model.Element{{
				Kind:     model.RestKind,
				Duration: constants.WholeNote,
				Voice:    1,
			}}
		} else {
			measure.Elements = []model.Element{{
				Kind:     model.ChordKind,
				Duration: constants.WholeNote,
				Voice:    1,
				Pitches:  append([]model.Pitch(nil), first.Pitches...),
			}}
		}
		part.Measures = append(part.Measures, measure)
	}
	return part
}

// firstChord picks the earliest-starting chord; ties go to the one that
// occurs first.
func firstChord(m model.Measure) (model.Element, bool) {
	var res model.Element
	found := false
	for _, e := range m.Elements {
		if e.Kind != model.ChordKind {
			continue
		}
		if !found || e.Offset < res.Offset {
			res = e
			found = true
		}
	}
	return res, found
}

// Verify checks that the generated part lines up measure for measure with
// the chordified score.
func Verify(score *model.Score, part model.Part) error {
	want := len(chord.Chordify(score))
	if got := len(part.Measures); got != want {
		return fmt.Errorf("%w: %d accompaniment measures, %d in score", ErrMeasureMismatch, got, want)
	}
	return nil
}

// Summary counts the chord and rest measures of a generated part.
func Summary(part model.Part) (chords int, rests int) {
	for _, m := range part.Measures {
		for _, e := range m.Elements {
			switch e.Kind {
			case model.ChordKind:
				chords++
			case model.RestKind:
				rests++
			}
		}
	}
	return chords, rests
}
