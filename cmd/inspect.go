package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/accompanist/accompaniment"
	"github.com/jsphweid/accompanist/chord"
	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/midi"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarizes a MusicXML or MIDI file",
	Long:  `Prints the parts of a MusicXML file with the chord each measure would be accompanied by, or the chords sounding in a MIDI file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		switch file.KindOf(path) {
		case file.MusicXML:
			score, err := musicxml.ReadFile(path)
			if err != nil {
				return err
			}
			inspectScore(cmd.OutOrStdout(), score)
		case file.Midi:
			s, err := midi.ReadMidiFile(path)
			if err != nil {
				return err
			}
			inspectMidi(cmd.OutOrStdout(), s)
		default:
			return fmt.Errorf("%w: can only inspect MusicXML or MIDI, got %s", file.ErrUnsupportedInput, path)
		}
		return nil
	},
}

func pitchNames(pitches []model.Pitch) string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.String()
	}
	return strings.Join(names, " ")
}

func inspectScore(w io.Writer, score *model.Score) {
	if score.Title != "" {
		fmt.Fprintf(w, "title: %s\n", score.Title)
	}
	if score.Composer != "" {
		fmt.Fprintf(w, "composer: %s\n", score.Composer)
	}
	for _, p := range score.Parts {
		fmt.Fprintf(w, "part %s %q: %d measures\n", p.ID, p.Name, len(p.Measures))
	}

	part := accompaniment.Generate(score)
	chords, rests := accompaniment.Summary(part)
	fmt.Fprintf(w, "accompaniment: %d chords, %d rests\n", chords, rests)
	for i, m := range part.Measures {
		e := m.Elements[0]
		if e.Kind != model.ChordKind {
			fmt.Fprintf(w, "  %d: rest\n", i+1)
			continue
		}
		fmt.Fprintf(w, "  %d: %s (%s)\n", i+1, chord.KeyOf(e.Pitches), pitchNames(e.Pitches))
	}
}

func inspectMidi(w io.Writer, s *smf.SMF) {
	fmt.Fprintf(w, "tracks: %d\n", len(s.Tracks))
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		fmt.Fprintf(w, "ticks per quarter: %d\n", tf.Resolution())
	}
	for _, e := range chord.FromSMF(s) {
		fmt.Fprintf(w, "  %d: %s\n", e.TicksOffset, chord.CreateChordKey(e.Notes))
	}
}
