package model

import "fmt"

// FormatError is returned when the container version is unknown or the
// decrypted payload does not look like a zip archive.
type FormatError struct {
	Version uint8
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ccmz version %d: %s", e.Version, e.Reason)
}

// ExtractionError is returned when the decrypted archive is corrupt or
// does not hold the expected score entry.
type ExtractionError struct {
	Entry  string
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.Entry == "" {
		return "archive: " + e.Reason
	}
	return fmt.Sprintf("archive entry %q: %s", e.Entry, e.Reason)
}

// ParseError is returned for schema violations in the score description,
// naming the offending field.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("score field %q: %s", e.Field, e.Reason)
}

// EncodingError is returned when a track cannot be represented in the
// output format. Track is the output track index.
type EncodingError struct {
	Track  int
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("track %d: %s", e.Track, e.Reason)
}
