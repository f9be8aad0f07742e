package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/accompanist/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

func CreateChordKey(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// KeyOf is CreateChordKey over spelled pitches.
func KeyOf(pitches []model.Pitch) string {
	notes := make([]uint8, 0, len(pitches))
	for _, p := range pitches {
		notes = append(notes, uint8(p.MIDI()))
	}
	return CreateChordKey(notes)
}

type reducedEvent struct {
	offset    int64
	isNoteOff bool
	note      uint8
}

func pressedNotes(pressed map[uint8]bool) model.Notes {
	notes := make(model.Notes, 0, len(pressed))
	for note := range pressed {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	return notes
}

// FromSMF returns the sounding key sets of a MIDI file in time order,
// one entry per tick at which the set changes to something non-empty.
func FromSMF(s *smf.SMF) []model.ChordEvent {
	var reducedEvents []reducedEvent
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				reducedEvents = append(reducedEvents, reducedEvent{
					offset:    absTicks,
					isNoteOff: velocity == 0,
					note:      key,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				reducedEvents = append(reducedEvents, reducedEvent{
					offset:    absTicks,
					isNoteOff: true,
					note:      key,
				})
			}
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(reducedEvents, func(i, j int) bool {
		if reducedEvents[i].offset != reducedEvents[j].offset {
			return reducedEvents[i].offset < reducedEvents[j].offset
		}
		return reducedEvents[i].isNoteOff && !reducedEvents[j].isNoteOff
	})

	var chords []model.ChordEvent
	pressed := make(map[uint8]bool)
	for i, evt := range reducedEvents {
		if evt.isNoteOff {
			delete(pressed, evt.note)
		} else {
			pressed[evt.note] = true
		}
		lastAtOffset := i == len(reducedEvents)-1 || reducedEvents[i+1].offset != evt.offset
		if lastAtOffset && len(pressed) > 0 {
			chords = append(chords, model.ChordEvent{
				TicksOffset: evt.offset,
				Notes:       pressedNotes(pressed),
			})
		}
	}
	return chords
}
