package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TesterNaN/ccmz2mid/constants"
	"github.com/TesterNaN/ccmz2mid/convert"
	"github.com/TesterNaN/ccmz2mid/fetch"
	"github.com/TesterNaN/ccmz2mid/util"
)

var fetchResolution uint16

func init() {
	fetchCmd.Flags().Uint16Var(&fetchResolution, "resolution", constants.DefaultResolution, "output resolution in ticks per quarter note")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url> [out.mid]",
	Short: "Downloads a ccmz file and converts it",
	Long:  `Downloads a ccmz file and converts it`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := ""
		if len(args) == 2 {
			outPath = args[1]
		}
		return runFetch(args[0], outPath)
	},
}

func runFetch(rawURL, outPath string) error {
	if outPath == "" {
		outPath = deriveOutputName(rawURL)
	}

	fmt.Printf("Downloading %v\n", rawURL)
	data, err := fetch.Fetch(rawURL)
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded %v bytes\n", len(data))

	b, err := convert.Convert(data, fetchResolution)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return errors.Wrap(err, "could not write midi file")
	}
	fmt.Printf("Wrote %v\n", outPath)
	return nil
}

func deriveOutputName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "output.mid"
	}
	return util.DeriveMidPath(path.Base(u.Path))
}
