// cascade-dump decodes one recorded frame into the unified radar cube and
// prints its dimensions plus per-channel RMS power, a quick sanity check on
// cabling and channel remap before any downstream processing.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/thinszx/radartools/cascade"
	"github.com/thinszx/radartools/config"
	"github.com/thinszx/radartools/internal/dsp"
)

func main() {
	dir := flag.String("dir", ".", "capture directory")
	capture := flag.Int("capture", 0, "capture id")
	frame := flag.Int("frame", 0, "frame index within the capture")
	cfgPath := flag.String("config", "", "optional *.mmwave.json file; overrides the parameter flags")
	samples := flag.Int("samples", 256, "ADC samples per chirp")
	loops := flag.Int("loops", 1, "loops per frame")
	tx := flag.Int("tx", 3, "TX channels per chip")
	rx := flag.Int("rx", 4, "RX channels per chip")
	spectrum := flag.Int("spectrum", -1, "print the range spectrum of this channel (first loop, first tx)")
	flag.Parse()

	params := config.Default()
	params.SamplesPerChirp = *samples
	params.LoopsPerFrame = *loops
	params.TX = *tx
	params.RX = *rx
	if *cfgPath != "" {
		var err error
		if params, err = config.LoadMMWaveJSON(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	reader, err := cascade.NewReader(*dir, params)
	if err != nil {
		log.Fatalf("open capture directory: %v", err)
	}

	cube, err := reader.ReadFrame(*capture, *frame)
	if err != nil {
		log.Fatalf("read frame: %v", err)
	}

	s, l, ch, txCount := cube.Dims()
	fmt.Printf("capture %04d frame %d: cube (%d samples, %d loops, %d channels, %d tx)\n",
		*capture, *frame, s, l, ch, txCount)
	fmt.Printf("range resolution %.3f m\n", params.RangeResolution())

	for c := 0; c < ch; c++ {
		fmt.Printf("  rx %2d: %7.2f dBFS\n", c, dsp.RMSDBFS(cube.Channel(c)))
	}

	if *spectrum >= 0 {
		if *spectrum >= ch {
			log.Fatalf("channel %d out of range, cube has %d channels", *spectrum, ch)
		}
		bins := dsp.SpectrumDBFS(cube.Chirp(0, *spectrum, 0))
		fmt.Printf("\nrange spectrum, channel %d\n", *spectrum)
		for i, v := range bins {
			fmt.Printf("  bin %3d: %7.2f dBFS\n", i, v)
		}
	}
}
