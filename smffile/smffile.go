// Package smffile serializes transcoded output to Standard MIDI File
// bytes, and reads them back for inspection.
package smffile

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/model"
)

// Write produces the binary SMF: header with the metric-ticks resolution
// and track count, then one chunk per track, each closed with an
// end-of-track marker. A delta beyond the four-byte varint ceiling is an
// EncodingError rather than a silent truncation.
func Write(out *model.OutputFile) ([]byte, error) {
	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(out.Resolution)

	for i, track := range out.Tracks {
		var t smf.Track
		for _, ev := range track {
			if ev.Delta > constants.MaxDelta {
				return nil, &model.EncodingError{
					Track:  i,
					Reason: fmt.Sprintf("delta time %d exceeds the representable maximum %d", ev.Delta, constants.MaxDelta),
				}
			}
			t = append(t, smf.Event{Delta: uint32(ev.Delta), Message: ev.Message})
		}
		t.Close(0)
		s.Tracks = append(s.Tracks, t)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, &model.EncodingError{Reason: "smf write failed: " + err.Error()}
	}
	return buf.Bytes(), nil
}

// Read parses SMF bytes.
func Read(data []byte) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return &blank, fmt.Errorf("error parsing midi file... %w", err)
	}
	return res, nil
}
