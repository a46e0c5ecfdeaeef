// Package convert chains the conversion pipeline: decrypt, extract,
// parse, transcode, write. Every stage fails fast; a failed run
// produces no output bytes.
package convert

import (
	"github.com/TesterNaN/ccmz2mid/archive"
	"github.com/TesterNaN/ccmz2mid/ccmz"
	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/score"
	"github.com/TesterNaN/ccmz2mid/smffile"
	"github.com/TesterNaN/ccmz2mid/transcode"
)

// Convert turns raw ccmz container bytes into SMF bytes at the given
// resolution (ticks per quarter note). A zero resolution selects the
// default of 480.
func Convert(data []byte, resolution uint16) ([]byte, error) {
	if resolution == 0 {
		resolution = constants.DefaultResolution
	}

	decrypted, err := ccmz.Decrypt(data)
	if err != nil {
		return nil, err
	}
	payload, err := archive.Extract(decrypted)
	if err != nil {
		return nil, err
	}
	doc, err := score.Parse(payload)
	if err != nil {
		return nil, err
	}
	out, err := transcode.Run(doc, resolution)
	if err != nil {
		return nil, err
	}
	return smffile.Write(out)
}
