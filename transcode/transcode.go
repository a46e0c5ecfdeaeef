// Package transcode turns a parsed score into delta-encoded output
// tracks: it resolves symbolic times to ticks, orders events, and
// materializes tempo and meter changes on a dedicated meta track.
package transcode

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/model"
	"github.com/TesterNaN/ccmz2mid/util"
)

// Run transcodes a document to the given output resolution. The result
// has one meta track followed by one track per score track.
func Run(doc *model.ScoreDocument, resolution uint16) (*model.OutputFile, error) {
	clock, err := NewClock(doc, resolution)
	if err != nil {
		return nil, err
	}

	out := &model.OutputFile{Resolution: resolution}

	meta, err := buildMetaTrack(doc, clock)
	if err != nil {
		return nil, err
	}
	out.Tracks = append(out.Tracks, meta)

	grouped := groupByTrack(doc.Events)
	for i, info := range doc.Tracks {
		track, err := buildTrack(i+1, info, grouped[uint16(i)], clock)
		if err != nil {
			return nil, err
		}
		out.Tracks = append(out.Tracks, track)
	}

	return out, nil
}

func groupByTrack(events []model.ScoreEvent) map[uint16][]model.ScoreEvent {
	res := make(map[uint16][]model.ScoreEvent)
	for _, ev := range events {
		res[ev.Track] = append(res[ev.Track], ev)
	}
	return res
}

// buildMetaTrack materializes tempo and meter changes at their resolved
// ticks, merged into one delta-encoded stream. A score with no tempo
// entries still gets one set-tempo event so players agree on speed.
func buildMetaTrack(doc *model.ScoreDocument, clock *Clock) (model.OutputTrack, error) {
	type metaEvent struct {
		tick uint64
		msg  smf.Message
	}
	var events []metaEvent

	if len(doc.Tempos) == 0 {
		events = append(events, metaEvent{0, smf.MetaTempo(60000000 / float64(constants.DefaultTempoMicros))})
	}
	for _, t := range doc.Tempos {
		events = append(events, metaEvent{clock.Ticks(t.Time), smf.MetaTempo(t.BPM)})
	}
	for _, m := range doc.Meters {
		events = append(events, metaEvent{clock.Ticks(m.Time), smf.MetaMeter(m.Numerator, m.Denominator)})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	var track model.OutputTrack
	var last uint64
	for _, ev := range events {
		if ev.tick < last {
			return nil, &model.EncodingError{Track: 0, Reason: "negative delta on meta track"}
		}
		track = append(track, model.OutputEvent{Delta: ev.tick - last, Message: ev.msg})
		last = ev.tick
	}
	return track, nil
}

// buildTrack resolves, orders and delta-encodes one score track. idx is
// the output track index (meta track is 0).
func buildTrack(idx int, info model.TrackInfo, events []model.ScoreEvent, clock *Clock) (model.OutputTrack, error) {
	canon := make([]model.CanonicalEvent, 0, len(events))
	for _, ev := range events {
		canon = append(canon, model.CanonicalEvent{Tick: clock.Ticks(ev.Time), Event: ev})
	}

	// tick ascending; at equal ticks note-offs come first so a re-struck
	// note never collides with its own release
	sort.SliceStable(canon, func(i, j int) bool {
		if canon[i].Tick != canon[j].Tick {
			return canon[i].Tick < canon[j].Tick
		}
		return canon[i].Event.Kind == model.NoteOff && canon[j].Event.Kind != model.NoteOff
	})

	canon = closeDangling(canon)

	track := model.OutputTrack{
		{Delta: 0, Message: smf.MetaTrackSequenceName(fmt.Sprintf("Track %d", idx))},
		{Delta: 0, Message: smf.Message(midi.ProgramChange(info.Channel, info.Program))},
	}

	var last uint64
	for _, ce := range canon {
		if ce.Tick < last {
			return nil, &model.EncodingError{
				Track:  idx,
				Reason: fmt.Sprintf("negative delta at tick %d", ce.Tick),
			}
		}
		track = append(track, model.OutputEvent{Delta: ce.Tick - last, Message: message(ce.Event)})
		last = ce.Tick
	}
	return track, nil
}

// closeDangling appends a note-off at the track's final tick for every
// note-on that never saw its release, so no note rings forever.
func closeDangling(canon []model.CanonicalEvent) []model.CanonicalEvent {
	open := make(map[uint16]int)
	var lastTick uint64
	for _, ce := range canon {
		key := uint16(ce.Event.Channel)<<8 | uint16(ce.Event.Key)
		switch ce.Event.Kind {
		case model.NoteOn:
			open[key]++
		case model.NoteOff:
			if open[key] > 0 {
				open[key]--
			}
		}
		lastTick = ce.Tick
	}

	for _, key := range util.SortedKeys(open) {
		for n := 0; n < open[key]; n++ {
			canon = append(canon, model.CanonicalEvent{
				Tick: lastTick,
				Event: model.ScoreEvent{
					Kind:    model.NoteOff,
					Channel: uint8(key >> 8),
					Key:     uint8(key),
				},
			})
		}
	}
	return canon
}

func message(ev model.ScoreEvent) smf.Message {
	switch ev.Kind {
	case model.NoteOn:
		return smf.Message(midi.NoteOn(ev.Channel, ev.Key, ev.Velocity))
	case model.NoteOff:
		return smf.Message(midi.NoteOffVelocity(ev.Channel, ev.Key, ev.Velocity))
	case model.ControlChange:
		return smf.Message(midi.ControlChange(ev.Channel, ev.Controller, ev.Value))
	case model.ProgramChange:
		return smf.Message(midi.ProgramChange(ev.Channel, ev.Program))
	case model.PitchBend:
		return smf.Message(midi.Pitchbend(ev.Channel, ev.Bend))
	case model.ChannelPressure:
		return smf.Message(midi.AfterTouch(ev.Channel, ev.Value))
	case model.PolyPressure:
		return smf.Message(midi.PolyAfterTouch(ev.Channel, ev.Key, ev.Value))
	}
	return nil
}
