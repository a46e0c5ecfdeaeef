package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ccmz2mid",
	Short: "Converts ccmz score containers to standard MIDI files",
	Long:  `Converts ccmz score containers to standard MIDI files.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
