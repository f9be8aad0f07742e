package constants

// Durations are integer ticks. 10080 is divisible by every common tuplet
// denominator (2..10, 12, 14, 16) so MusicXML divisions convert exactly.
const TicksPerQuarter = 10080

const WholeNote = 4 * TicksPerQuarter

// resolution of exported MIDI files
const MidiTicksPerQuarter = 480

const DefaultTempo = 120.0

// General MIDI program numbers are 1-based in MusicXML
const PianoProgram = 1

const AccompanimentPartID = "P-accompaniment"
const AccompanimentName = "Piano"

const (
	DefaultPagesDir  = "pdf_pages"
	DefaultScorePath = "score.musicxml"
	DefaultMidiPath  = "output.mid"
	DefaultXMLPath   = "output_with_accompaniment.musicxml"
)

const DefaultRasterDPI = 300

const DefaultCatalogTable = "accompanist-runs"
