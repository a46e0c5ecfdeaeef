package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TesterNaN/ccmz2mid/archive"
	"github.com/TesterNaN/ccmz2mid/ccmz"
	"github.com/TesterNaN/ccmz2mid/model"
	"github.com/TesterNaN/ccmz2mid/score"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <in.ccmz>",
	Short: "Inspects a ccmz container",
	Long:  `Inspects a ccmz container`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "could not read container")
	}

	version, err := ccmz.Version(data)
	if err != nil {
		return err
	}
	fmt.Printf("File size: %v bytes\n", len(data))
	fmt.Printf("Container version: %v\n", version)

	decrypted, err := ccmz.Decrypt(data)
	if err != nil {
		return err
	}
	entries, err := archive.Entries(decrypted)
	if err != nil {
		return err
	}
	fmt.Printf("Archive entries: %v\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %v (%v bytes)\n", e.Name, e.Size)
	}

	payload, err := archive.Extract(decrypted)
	if err != nil {
		return err
	}
	doc, err := score.Parse(payload)
	if err != nil {
		return err
	}

	noteEvents := 0
	for _, ev := range doc.Events {
		switch ev.Kind {
		case model.NoteOn, model.NoteOff:
			noteEvents++
		}
	}

	fmt.Printf("Resolution: %v subdivisions/quarter\n", doc.Resolution)
	fmt.Printf("Tracks: %v\n", len(doc.Tracks))
	fmt.Printf("Events: %v (%v note events)\n", len(doc.Events), noteEvents)
	fmt.Printf("Tempo changes: %v\n", len(doc.Tempos))
	fmt.Printf("Meter changes: %v\n", len(doc.Meters))
	return nil
}
