package accompaniment

import "github.com/jsphweid/accompanist/model"

// Combine returns a new score holding copies of the original parts, in
// order, followed by a copy of the accompaniment. Neither input is
// modified and no compatibility checks are made.
func Combine(score *model.Score, accompaniment model.Part) *model.Score {
	combined := score.Clone()
	combined.Parts = append(combined.Parts, accompaniment.Clone())
	return combined
}

// Accompany runs Generate and Combine and checks measure alignment. The
// combined score is returned even when the alignment check fails.
func Accompany(score *model.Score) (*model.Score, model.Part, error) {
	part := Generate(score)
	combined := Combine(score, part)
	return combined, part, Verify(score, part)
}
