package model

import "gitlab.com/gomidi/midi/v2/smf"

// OutputEvent is one delta-encoded event of an output track. Delta is
// kept wide here so the writer can reject values the SMF varint cannot
// represent instead of silently truncating them.
type OutputEvent struct {
	Delta   uint64
	Message smf.Message
}

type OutputTrack []OutputEvent

// OutputFile is the fully transcoded event stream: track zero carries
// tempo and meter meta events, the rest mirror the score's tracks.
type OutputFile struct {
	Resolution uint16
	Tracks     []OutputTrack
}
