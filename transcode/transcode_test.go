package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TesterNaN/ccmz2mid/model"
)

func basicDoc() *model.ScoreDocument {
	return &model.ScoreDocument{
		Resolution: 480,
		Tempos:     []model.TempoChange{{Time: 0, BPM: 120}},
		Meters:     []model.MeterChange{{Time: 0, Numerator: 4, Denominator: 4}},
		Tracks:     []model.TrackInfo{{Channel: 0, Program: 0}},
		Events: []model.ScoreEvent{
			{Time: 0, Track: 0, Kind: model.NoteOn, Key: 60, Velocity: 80},
			{Time: 480, Track: 0, Kind: model.NoteOff, Key: 60},
		},
	}
}

func TestSingleNoteAtConstantTempo(t *testing.T) {
	out, err := Run(basicDoc(), 480)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(uint16(480), out.Resolution)
	assert.Len(out.Tracks, 2)

	meta := out.Tracks[0]
	assert.Len(meta, 2)
	var bpm float64
	assert.True(meta[0].Message.GetMetaTempo(&bpm))
	assert.Equal(float64(120), bpm)
	assert.Equal(uint64(0), meta[0].Delta)
	var num, den uint8
	assert.True(meta[1].Message.GetMetaMeter(&num, &den))
	assert.Equal(uint8(4), num)
	assert.Equal(uint8(4), den)

	track := out.Tracks[1]
	// track name, program change, note on, note off
	assert.Len(track, 4)

	var ch, key, vel uint8
	assert.True(track[2].Message.GetNoteOn(&ch, &key, &vel))
	assert.Equal(uint64(0), track[2].Delta)
	assert.Equal(uint8(60), key)
	assert.Equal(uint8(80), vel)

	assert.True(track[3].Message.GetNoteOff(&ch, &key, &vel))
	assert.Equal(uint64(480), track[3].Delta)
	assert.Equal(uint8(60), key)
}

func TestNoteOffSortsBeforeNoteOnAtEqualTick(t *testing.T) {
	doc := basicDoc()
	doc.Events = []model.ScoreEvent{
		{Time: 0, Track: 0, Kind: model.NoteOn, Key: 60, Velocity: 80},
		// inserted before the off, but shares tick 480 with it
		{Time: 480, Track: 0, Kind: model.NoteOn, Key: 60, Velocity: 90},
		{Time: 480, Track: 0, Kind: model.NoteOff, Key: 60},
		{Time: 960, Track: 0, Kind: model.NoteOff, Key: 60},
	}

	out, err := Run(doc, 480)

	assert := assert.New(t)
	assert.NoError(err)
	track := out.Tracks[1]
	assert.Len(track, 6)

	var ch, key, vel uint8
	assert.True(track[3].Message.GetNoteOff(&ch, &key, &vel), "note off should precede the restrike")
	assert.Equal(uint64(480), track[3].Delta)
	assert.True(track[4].Message.GetNoteOn(&ch, &key, &vel))
	assert.Equal(uint64(0), track[4].Delta)
	assert.Equal(uint8(90), vel)
}

func TestRescalesDocumentGridToOutputResolution(t *testing.T) {
	out, err := Run(basicDoc(), 960)

	assert := assert.New(t)
	assert.NoError(err)
	track := out.Tracks[1]
	assert.Equal(uint64(960), track[3].Delta)

	out, err = Run(basicDoc(), 240)
	assert.NoError(err)
	track = out.Tracks[1]
	assert.Equal(uint64(240), track[3].Delta)
}

func TestDanglingNoteOnGetsClosed(t *testing.T) {
	doc := basicDoc()
	doc.Events = []model.ScoreEvent{
		{Time: 0, Track: 0, Kind: model.NoteOn, Key: 60, Velocity: 80},
		{Time: 240, Track: 0, Kind: model.NoteOn, Key: 64, Velocity: 80},
		{Time: 480, Track: 0, Kind: model.NoteOff, Key: 60},
	}

	out, err := Run(doc, 480)

	assert := assert.New(t)
	assert.NoError(err)
	track := out.Tracks[1]
	assert.Len(track, 6)

	var ch, key, vel uint8
	last := track[len(track)-1]
	assert.True(last.Message.GetNoteOff(&ch, &key, &vel))
	assert.Equal(uint8(64), key)
	assert.Equal(uint64(0), last.Delta, "synthesized close lands on the final tick")
}

func TestEveryNoteOnHasALaterNoteOff(t *testing.T) {
	doc := basicDoc()
	doc.Events = []model.ScoreEvent{
		{Time: 0, Track: 0, Kind: model.NoteOn, Key: 60, Velocity: 80},
		{Time: 0, Track: 0, Kind: model.NoteOn, Key: 64, Velocity: 80},
		{Time: 120, Track: 0, Kind: model.NoteOn, Key: 67, Velocity: 80},
		{Time: 480, Track: 0, Kind: model.NoteOff, Key: 64},
	}

	out, err := Run(doc, 480)

	assert := assert.New(t)
	assert.NoError(err)

	open := make(map[uint16]int)
	var ch, key, vel uint8
	for _, ev := range out.Tracks[1] {
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			open[uint16(ch)<<8|uint16(key)]++
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			open[uint16(ch)<<8|uint16(key)]--
		}
	}
	for k, n := range open {
		assert.Equal(0, n, "note %v left open", k)
	}
}

func TestNonMonotonicTempoTimesRejected(t *testing.T) {
	doc := basicDoc()
	doc.Tempos = []model.TempoChange{{Time: 100, BPM: 120}, {Time: 100, BPM: 90}}

	_, err := Run(doc, 480)

	assert := assert.New(t)
	var pe *model.ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal("tempos", pe.Field)
}

func TestNonMonotonicMeterTimesRejected(t *testing.T) {
	doc := basicDoc()
	doc.Meters = []model.MeterChange{
		{Time: 200, Numerator: 4, Denominator: 4},
		{Time: 100, Numerator: 3, Denominator: 4},
	}

	_, err := Run(doc, 480)

	assert := assert.New(t)
	var pe *model.ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal("beatInfos", pe.Field)
}

func TestMetaTrackMergesTempoAndMeterByTick(t *testing.T) {
	doc := basicDoc()
	doc.Tempos = []model.TempoChange{{Time: 0, BPM: 120}, {Time: 1920, BPM: 80}}
	doc.Meters = []model.MeterChange{
		{Time: 0, Numerator: 4, Denominator: 4},
		{Time: 960, Numerator: 3, Denominator: 8},
	}
	doc.Events = nil

	out, err := Run(doc, 480)

	assert := assert.New(t)
	assert.NoError(err)
	meta := out.Tracks[0]
	assert.Len(meta, 4)

	deltas := []uint64{meta[0].Delta, meta[1].Delta, meta[2].Delta, meta[3].Delta}
	assert.Equal([]uint64{0, 0, 960, 960}, deltas)

	var num, den uint8
	assert.True(meta[2].Message.GetMetaMeter(&num, &den))
	assert.Equal(uint8(3), num)
	assert.Equal(uint8(8), den)
	var bpm float64
	assert.True(meta[3].Message.GetMetaTempo(&bpm))
	assert.Equal(float64(80), bpm)
}

func TestDefaultTempoEmittedWhenScoreHasNone(t *testing.T) {
	doc := basicDoc()
	doc.Tempos = nil
	doc.Meters = nil
	doc.Events = nil

	out, err := Run(doc, 480)

	assert := assert.New(t)
	assert.NoError(err)
	meta := out.Tracks[0]
	assert.Len(meta, 1)
	var bpm float64
	assert.True(meta[0].Message.GetMetaTempo(&bpm))
	assert.Equal(float64(96), bpm)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	first, err := Run(basicDoc(), 480)
	assert.NoError(t, err)
	second, err := Run(basicDoc(), 480)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}
