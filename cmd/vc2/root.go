package main

import "github.com/spf13/cobra"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vc2",
	Short: "Encode and decode SMPTE VC-2 HQ/LD bitstreams",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML profile overriding default encode parameters")
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}
