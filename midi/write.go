package midi

import (
	"sort"

	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/model"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const defaultVelocity = 90

type timedMessage struct {
	tick  int64
	order int
	msg   []byte
}

func toMidiTicks(ticks int64) int64 {
	return ticks * constants.MidiTicksPerQuarter / constants.TicksPerQuarter
}

// FromScore renders the score as a format 1 SMF: a conductor track with
// meter and tempo, then one track per part on its own channel.
func FromScore(score *model.Score) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.MidiTicksPerQuarter)

	if err := s.Add(conductorTrack(score)); err != nil {
		return nil, err
	}
	for i, part := range score.Parts {
		if err := s.Add(partTrack(part, model.ChannelFor(i))); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func WriteFile(path string, score *model.Score) error {
	s, err := FromScore(score)
	if err != nil {
		return err
	}
	return s.WriteFile(path)
}

func conductorTrack(score *model.Score) smf.Track {
	var msgs []timedMessage
	if score.Title != "" {
		msgs = append(msgs, timedMessage{msg: smf.MetaTrackSequenceName(score.Title)})
	}
	msgs = append(msgs, timedMessage{order: 1, msg: smf.MetaTempo(constants.DefaultTempo)})

	meter := false
	if len(score.Parts) > 0 {
		part := score.Parts[0]
		offsets := part.MeasureOffsets()
		for i, m := range part.Measures {
			if m.Time == nil {
				continue
			}
			msgs = append(msgs, timedMessage{
				tick:  toMidiTicks(offsets[i]),
				order: 2,
				msg:   smf.MetaMeter(uint8(m.Time.Beats), uint8(m.Time.BeatType)),
			})
			meter = meter || i == 0
		}
	}
	if !meter {
		msgs = append(msgs, timedMessage{order: 2, msg: smf.MetaMeter(4, 4)})
	}
	return toTrack(msgs)
}

func partTrack(part model.Part, channel uint8) smf.Track {
	program := part.MidiProgram - 1
	if program < 0 {
		program = 0
	}
	name := part.Name
	if name == "" {
		name = part.ID
	}
	msgs := []timedMessage{
		{order: 0, msg: smf.MetaTrackSequenceName(name)},
		{order: 1, msg: gomidi.ProgramChange(channel, uint8(program))},
	}

	offsets := part.MeasureOffsets()
	for i, m := range part.Measures {
		for _, e := range m.Elements {
			if e.Kind == model.RestKind || e.Duration <= 0 {
				continue
			}
			start := toMidiTicks(offsets[i] + e.Offset)
			end := toMidiTicks(offsets[i] + e.End())
			for _, p := range e.Pitches {
				key := p.MIDI()
				if key < 0 || key > 127 {
					continue
				}
				// offs sort before ons at the same tick so repeated keys retrigger
				msgs = append(msgs,
					timedMessage{tick: start, order: 3, msg: gomidi.NoteOn(channel, uint8(key), defaultVelocity)},
					timedMessage{tick: end, order: 2, msg: gomidi.NoteOff(channel, uint8(key))},
				)
			}
		}
	}
	return toTrack(msgs)
}

func toTrack(msgs []timedMessage) smf.Track {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].order < msgs[j].order
	})

	var track smf.Track
	var last int64
	for _, m := range msgs {
		track.Add(uint32(m.tick-last), m.msg)
		last = m.tick
	}
	track.Close(0)
	return track
}
