// Package archive unpacks the decrypted zip and yields the score payload.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/model"
)

// Entry describes one archive member, for inspection output.
type Entry struct {
	Name string
	Size uint64
}

func open(data []byte) (*zip.Reader, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &model.ExtractionError{Reason: "not a valid zip archive: " + err.Error()}
	}
	return r, nil
}

// Entries lists the archive members without extracting anything.
func Entries(data []byte) ([]Entry, error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}
	res := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		res = append(res, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	return res, nil
}

// Extract returns the bytes of the single expected score entry. Any
// other member count, or a member with a different name, is an error.
func Extract(data []byte) ([]byte, error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}
	if len(r.File) != 1 {
		return nil, &model.ExtractionError{
			Entry:  constants.EntryName,
			Reason: fmt.Sprintf("expected exactly 1 entry, found %d", len(r.File)),
		}
	}
	f := r.File[0]
	if !strings.EqualFold(f.Name, constants.EntryName) {
		return nil, &model.ExtractionError{
			Entry:  f.Name,
			Reason: fmt.Sprintf("expected entry %q", constants.EntryName),
		}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &model.ExtractionError{Entry: f.Name, Reason: "could not open entry: " + err.Error()}
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, &model.ExtractionError{Entry: f.Name, Reason: "could not read entry: " + err.Error()}
	}
	return payload, nil
}
