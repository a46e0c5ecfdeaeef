package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TesterNaN/ccmz2mid/archive"
	"github.com/TesterNaN/ccmz2mid/ccmz"
	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/score"
	"github.com/TesterNaN/ccmz2mid/smffile"
	"github.com/TesterNaN/ccmz2mid/transcode"
	"github.com/TesterNaN/ccmz2mid/util"
)

var (
	convertResolution uint16
	convertKeepTemp   bool
)

func init() {
	convertCmd.Flags().Uint16Var(&convertResolution, "resolution", constants.DefaultResolution, "output resolution in ticks per quarter note")
	convertCmd.Flags().BoolVar(&convertKeepTemp, "keep-temp", false, "keep decrypted intermediate files")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <in.ccmz> [out.mid]",
	Short: "Converts a local ccmz file",
	Long:  `Converts a local ccmz file`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := ""
		if len(args) == 2 {
			outPath = args[1]
		}
		return runConvert(args[0], outPath)
	},
}

func runConvert(inPath, outPath string) error {
	if outPath == "" {
		outPath = util.DeriveMidPath(inPath)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "could not read container")
	}
	fmt.Printf("Read %v (%v bytes)\n", inPath, len(data))

	decrypted, err := ccmz.Decrypt(data)
	if err != nil {
		return err
	}
	payload, err := archive.Extract(decrypted)
	if err != nil {
		return err
	}

	if convertKeepTemp {
		if err := keepIntermediates(decrypted, payload); err != nil {
			return err
		}
	}

	doc, err := score.Parse(payload)
	if err != nil {
		return err
	}
	fmt.Printf("Parsed %v tracks, %v events, %v tempo changes, %v meter changes\n",
		len(doc.Tracks), len(doc.Events), len(doc.Tempos), len(doc.Meters))

	out, err := transcode.Run(doc, convertResolution)
	if err != nil {
		return err
	}
	b, err := smffile.Write(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return errors.Wrap(err, "could not write midi file")
	}
	fmt.Printf("Wrote %v (%v tracks, %v ticks/quarter)\n", outPath, len(out.Tracks), out.Resolution)
	return nil
}

func keepIntermediates(decrypted, payload []byte) error {
	dir := filepath.Join(os.TempDir(), constants.WorkDirPrefix+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "could not create work dir")
	}
	if err := os.WriteFile(filepath.Join(dir, "decrypted.zip"), decrypted, 0o644); err != nil {
		return errors.Wrap(err, "could not keep decrypted archive")
	}
	if err := os.WriteFile(filepath.Join(dir, constants.EntryName), payload, 0o644); err != nil {
		return errors.Wrap(err, "could not keep score payload")
	}
	fmt.Printf("Intermediate files kept in %v\n", dir)
	return nil
}
