package constants

// EntryName is the score description file inside the decrypted container.
const EntryName = "midi.json"

// DefaultResolution is the output resolution in ticks per quarter note.
const DefaultResolution = 480

// DefaultTempoMicros is the tempo assumed when a score declares none,
// in microseconds per quarter note.
const DefaultTempoMicros = 625000

// MaxDelta is the largest delta time a four-byte SMF varint can carry.
const MaxDelta = 0x0FFFFFFF

const WorkDirPrefix = "ccmz2mid-"
