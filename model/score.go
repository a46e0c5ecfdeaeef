package model

// EventKind identifies the channel-message family a ScoreEvent carries.
type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
	ControlChange
	ProgramChange
	PitchBend
	ChannelPressure
	PolyPressure
)

// ScoreEvent is a single score event at a symbolic time on the document
// grid. Only the payload fields relevant to Kind are meaningful.
type ScoreEvent struct {
	Time    uint64
	Track   uint16
	Channel uint8
	Kind    EventKind

	Key        uint8 // NoteOn, NoteOff, PolyPressure
	Velocity   uint8 // NoteOn, NoteOff
	Controller uint8 // ControlChange
	Value      uint8 // ControlChange, ChannelPressure, PolyPressure
	Program    uint8 // ProgramChange
	Bend       int16 // PitchBend, -8192..8191
}

// TrackInfo is the per-track metadata from the score description.
type TrackInfo struct {
	Channel uint8
	Program uint8
}

type TempoChange struct {
	Time uint64
	BPM  float64
}

type MeterChange struct {
	Time        uint64
	Numerator   uint8
	Denominator uint8
}

// ScoreDocument is the parsed score. Times in Tempos, Meters and Events
// are expressed in Resolution subdivisions per quarter note. Tempo and
// meter times are strictly increasing within their lists.
type ScoreDocument struct {
	Resolution uint16
	Tempos     []TempoChange
	Meters     []MeterChange
	Tracks     []TrackInfo
	Events     []ScoreEvent
}

// CanonicalEvent is a ScoreEvent resolved to an absolute output tick.
type CanonicalEvent struct {
	Tick  uint64
	Event ScoreEvent
}
