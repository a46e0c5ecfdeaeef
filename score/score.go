// Package score parses the midi.json score description.
package score

import (
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/TesterNaN/ccmz2mid/model"
)

// Raw shapes of the container's JSON. Required fields are pointers so a
// missing field can be told apart from a zero value. Unknown fields are
// ignored for forward compatibility.
type rawDocument struct {
	Resolution *int           `json:"resolution"`
	Tempos     *[]rawTempo    `json:"tempos"`
	BeatInfos  *[]rawBeatInfo `json:"beatInfos"`
	Tracks     *[]rawTrack    `json:"tracks"`
	Events     []rawEvent     `json:"events"`
}

type rawTempo struct {
	Tick  *int64 `json:"tick"`
	Tempo *int64 `json:"tempo"` // microseconds per quarter note
}

type rawBeatInfo struct {
	Tick      *int64 `json:"tick"`
	Beats     *int   `json:"beats"`
	BeatsUnit *int   `json:"beatsUnit"`
}

type rawTrack struct {
	Channel *int `json:"channel"`
	Program *int `json:"program"`
}

type rawEvent struct {
	Tick  *int64 `json:"tick"`
	Track *int   `json:"track"`
	Event []int  `json:"event"` // raw MIDI status byte plus data bytes
}

// MIDI channel-message status nibbles.
const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusPolyPressure    = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0
)

// Parse decodes and validates the score description. Missing or
// malformed fields fail with a ParseError naming the field.
func Parse(data []byte) (*model.ScoreDocument, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &model.ParseError{Field: "document", Reason: "invalid JSON: " + err.Error()}
	}

	doc := &model.ScoreDocument{}

	if raw.Resolution == nil {
		return nil, &model.ParseError{Field: "resolution", Reason: "missing"}
	}
	if *raw.Resolution <= 0 || *raw.Resolution > 0x7FFF {
		return nil, &model.ParseError{Field: "resolution", Reason: fmt.Sprintf("out of range: %d", *raw.Resolution)}
	}
	doc.Resolution = uint16(*raw.Resolution)

	if raw.Tempos == nil {
		return nil, &model.ParseError{Field: "tempos", Reason: "missing"}
	}
	for i, t := range *raw.Tempos {
		if t.Tick == nil || *t.Tick < 0 {
			return nil, &model.ParseError{Field: "tempos", Reason: fmt.Sprintf("entry %d: bad tick", i)}
		}
		if t.Tempo == nil || *t.Tempo <= 0 {
			return nil, &model.ParseError{Field: "tempos", Reason: fmt.Sprintf("entry %d: tempo must be positive", i)}
		}
		doc.Tempos = append(doc.Tempos, model.TempoChange{
			Time: uint64(*t.Tick),
			BPM:  60000000 / float64(*t.Tempo),
		})
	}

	if raw.BeatInfos == nil {
		return nil, &model.ParseError{Field: "beatInfos", Reason: "missing"}
	}
	for i, b := range *raw.BeatInfos {
		if b.Tick == nil || *b.Tick < 0 {
			return nil, &model.ParseError{Field: "beatInfos", Reason: fmt.Sprintf("entry %d: bad tick", i)}
		}
		if b.Beats == nil || *b.Beats < 1 || *b.Beats > 255 {
			return nil, &model.ParseError{Field: "beatInfos", Reason: fmt.Sprintf("entry %d: bad numerator", i)}
		}
		if b.BeatsUnit == nil || *b.BeatsUnit < 1 || *b.BeatsUnit > 32 || bits.OnesCount(uint(*b.BeatsUnit)) != 1 {
			return nil, &model.ParseError{Field: "beatInfos", Reason: fmt.Sprintf("entry %d: denominator must be a power of two up to 32", i)}
		}
		doc.Meters = append(doc.Meters, model.MeterChange{
			Time:        uint64(*b.Tick),
			Numerator:   uint8(*b.Beats),
			Denominator: uint8(*b.BeatsUnit),
		})
	}

	if raw.Tracks == nil {
		return nil, &model.ParseError{Field: "tracks", Reason: "missing"}
	}
	for i, tr := range *raw.Tracks {
		info := model.TrackInfo{Channel: uint8(i % 16)}
		if tr.Channel != nil {
			if *tr.Channel < 0 || *tr.Channel > 15 {
				return nil, &model.ParseError{Field: "tracks", Reason: fmt.Sprintf("entry %d: bad channel", i)}
			}
			info.Channel = uint8(*tr.Channel)
		}
		if tr.Program != nil {
			if *tr.Program < 0 || *tr.Program > 127 {
				return nil, &model.ParseError{Field: "tracks", Reason: fmt.Sprintf("entry %d: bad program", i)}
			}
			info.Program = uint8(*tr.Program)
		}
		doc.Tracks = append(doc.Tracks, info)
	}

	for i, ev := range raw.Events {
		if ev.Tick == nil || *ev.Tick < 0 {
			return nil, &model.ParseError{Field: "events", Reason: fmt.Sprintf("entry %d: bad tick", i)}
		}
		track := 0
		if ev.Track != nil {
			track = *ev.Track
		}
		if track < 0 || track >= len(doc.Tracks) {
			return nil, &model.ParseError{Field: "events", Reason: fmt.Sprintf("entry %d: track %d out of range", i, track)}
		}
		se, ok := decodeEvent(ev.Event)
		if !ok {
			// unsupported status or truncated data bytes
			continue
		}
		se.Time = uint64(*ev.Tick)
		se.Track = uint16(track)
		doc.Events = append(doc.Events, se)
	}

	return doc, nil
}

// decodeEvent maps a raw status-byte message to a ScoreEvent. Events the
// output model cannot carry report !ok and are skipped by the caller.
func decodeEvent(data []int) (model.ScoreEvent, bool) {
	var ev model.ScoreEvent
	if len(data) == 0 {
		return ev, false
	}
	status := data[0]
	if status < 0x80 || status > 0xEF {
		return ev, false
	}
	for _, d := range data[1:] {
		if d < 0 || d > 127 {
			return ev, false
		}
	}
	ev.Channel = uint8(status & 0x0F)

	switch status & 0xF0 {
	case statusNoteOff:
		if len(data) < 3 {
			return ev, false
		}
		ev.Kind = model.NoteOff
		ev.Key = uint8(data[1])
		ev.Velocity = uint8(data[2])
	case statusNoteOn:
		if len(data) < 3 {
			return ev, false
		}
		ev.Kind = model.NoteOn
		ev.Key = uint8(data[1])
		ev.Velocity = uint8(data[2])
		if ev.Velocity == 0 {
			// velocity-zero note-on is a note-off by convention
			ev.Kind = model.NoteOff
		}
	case statusPolyPressure:
		if len(data) < 3 {
			return ev, false
		}
		ev.Kind = model.PolyPressure
		ev.Key = uint8(data[1])
		ev.Value = uint8(data[2])
	case statusControlChange:
		if len(data) < 3 {
			return ev, false
		}
		ev.Kind = model.ControlChange
		ev.Controller = uint8(data[1])
		ev.Value = uint8(data[2])
	case statusProgramChange:
		if len(data) < 2 {
			return ev, false
		}
		ev.Kind = model.ProgramChange
		ev.Program = uint8(data[1])
	case statusChannelPressure:
		if len(data) < 2 {
			return ev, false
		}
		ev.Kind = model.ChannelPressure
		ev.Value = uint8(data[1])
	case statusPitchBend:
		if len(data) < 3 {
			return ev, false
		}
		ev.Kind = model.PitchBend
		ev.Bend = int16(data[2])<<7 | int16(data[1])
		ev.Bend -= 8192
	default:
		return ev, false
	}
	return ev, true
}
