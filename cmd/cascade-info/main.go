// cascade-info summarises the recordings in a capture directory: discovered
// file pairs per device role plus the master index contents of one capture.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/thinszx/radartools/cascade"
)

func main() {
	dir := flag.String("dir", ".", "capture directory holding *_data.bin/*_idx.bin pairs")
	capture := flag.Int("capture", 0, "capture id to inspect")
	flag.Parse()

	for _, role := range cascade.Roles {
		rs, err := cascade.Discover(*dir, role)
		if err != nil {
			if errors.Is(err, cascade.ErrMissingFiles) || errors.Is(err, cascade.ErrCountMismatch) {
				log.Fatalf("discovery failed: %v", err)
			}
			log.Fatalf("discover %s: %v", role, err)
		}
		fmt.Printf("%-8s %d capture(s)\n", rs.Role, rs.Captures())
	}

	idx, err := cascade.ParseIndex(*dir, *capture)
	if err != nil {
		log.Fatalf("parse index for capture %d: %v", *capture, err)
	}

	fmt.Printf("\ncapture %04d\n", idx.CaptureID)
	fmt.Printf("  frames:     %d\n", idx.FrameCount)
	fmt.Printf("  data bytes: %d per device\n", idx.DataBytes)
	if len(idx.Timestamps) > 0 {
		first := idx.Timestamps[0]
		last := idx.Timestamps[len(idx.Timestamps)-1]
		fmt.Printf("  span:       %s\n", last.Sub(first).Round(time.Microsecond))
	}
}
