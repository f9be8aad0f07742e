package musicxml

import "github.com/jsphweid/accompanist/model"

// Concat joins page-by-page recognition results into one score. Parts are
// aligned by index; measures of later pages are appended and renumbered.
// Title and composer come from the first page that has them.
func Concat(pages ...*model.Score) *model.Score {
	res := &model.Score{}
	for _, page := range pages {
		if page == nil {
			continue
		}
		if res.Title == "" {
			res.Title = page.Title
		}
		if res.Composer == "" {
			res.Composer = page.Composer
		}
		for i, part := range page.Parts {
			if i >= len(res.Parts) {
				res.Parts = append(res.Parts, model.Part{
					ID:          part.ID,
					Name:        part.Name,
					Instrument:  part.Instrument,
					MidiProgram: part.MidiProgram,
				})
			}
			dst := &res.Parts[i]
			for _, m := range part.Measures {
				c := m.Clone()
				c.Number = len(dst.Measures) + 1
				dst.Measures = append(dst.Measures, c)
			}
		}
	}
	return res
}
