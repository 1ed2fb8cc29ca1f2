// Command vc2 is a thin PPM-in/PPM-out front end for the vc2 codec
// library: encode a sequence of PPM frames into a VC-2 bitstream, or
// decode a VC-2 bitstream back into PPM frames.
package main

import (
	"os"

	"github.com/cnotch/xlog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		xlog.Errorf("%v", err)
		os.Exit(1)
	}
}
