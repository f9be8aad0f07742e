package chord

import (
	"sort"

	"github.com/jsphweid/accompanist/model"
)

type soundingPitch struct {
	start int64
	end   int64
	pitch model.Pitch
}

// Chordify reduces every part of the score to one stream of simultaneities
// per measure index. Each measure is cut at every onset and release across
// all parts; a slice sounding two or more distinct keys becomes a Chord, a
// slice sounding one key becomes a Note and silent slices are dropped.
// The score is not modified.
func Chordify(score *model.Score) []model.Measure {
	count := score.MeasureCount()
	view := make([]model.Measure, 0, count)
	for i := 0; i < count; i++ {
		view = append(view, chordifyMeasure(score, i))
	}
	return view
}

func chordifyMeasure(score *model.Score, index int) model.Measure {
	res := model.Measure{Number: index + 1}
	var sounding []soundingPitch
	numbered := false
	for _, part := range score.Parts {
		if index >= len(part.Measures) {
			continue
		}
		m := part.Measures[index]
		if !numbered {
			if m.Number != 0 {
				res.Number = m.Number
			}
			res.Implicit = m.Implicit
			if m.Time != nil {
				ts := *m.Time
				res.Time = &ts
			}
			numbered = true
		}
		for _, e := range m.Elements {
			if e.Kind == model.RestKind || e.Duration <= 0 {
				continue
			}
			for _, p := range e.Pitches {
				sounding = append(sounding, soundingPitch{start: e.Offset, end: e.End(), pitch: p})
			}
		}
	}

	for _, slice := range slices(sounding) {
		pitches := pitchesBetween(sounding, slice[0], slice[1])
		switch {
		case len(pitches) >= 2:
			res.Elements = append(res.Elements, model.Element{
				Kind:     model.ChordKind,
				Offset:   slice[0],
				Duration: slice[1] - slice[0],
				Voice:    1,
				Pitches:  pitches,
			})
		case len(pitches) == 1:
			res.Elements = append(res.Elements, model.Element{
				Kind:     model.NoteKind,
				Offset:   slice[0],
				Duration: slice[1] - slice[0],
				Voice:    1,
				Pitches:  pitches,
			})
		}
	}
	return res
}

// slices returns consecutive [from, to) spans between every distinct
// onset and release.
func slices(sounding []soundingPitch) [][2]int64 {
	seen := make(map[int64]bool)
	var points []int64
	for _, s := range sounding {
		for _, p := range []int64{s.start, s.end} {
			if !seen[p] {
				seen[p] = true
				points = append(points, p)
			}
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })

	var res [][2]int64
	for i := 0; i+1 < len(points); i++ {
		res = append(res, [2]int64{points[i], points[i+1]})
	}
	return res
}

// pitchesBetween collects the distinct keys sounding throughout [from, to),
// lowest first. The first spelling seen for a key wins.
func pitchesBetween(sounding []soundingPitch, from, to int64) []model.Pitch {
	byKey := make(map[int]model.Pitch)
	var keys []int
	for _, s := range sounding {
		if s.start >= to || s.end <= from {
			continue
		}
		key := s.pitch.MIDI()
		if _, ok := byKey[key]; ok {
			continue
		}
		byKey[key] = s.pitch
		keys = append(keys, key)
	}
	sort.Ints(keys)
	pitches := make([]model.Pitch, 0, len(keys))
	for _, k := range keys {
		pitches = append(pitches, byKey[k])
	}
	return pitches
}
