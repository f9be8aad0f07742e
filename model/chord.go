package model

type Notes = []uint8

// ChordEvent is a set of simultaneously sounding keys read from a MIDI
// file, starting at an absolute tick.
type ChordEvent struct {
	TicksOffset int64
	Notes       Notes
}
