// cascade-live streams frames from a running capture server. The cascade
// package never retries on its own, so reconnect policy lives here: lost
// connections are re-established with exponential backoff for up to half a
// minute before the tool gives up.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/thinszx/radartools/cascade"
	"github.com/thinszx/radartools/internal/dsp"
	"github.com/thinszx/radartools/internal/logging"
	"github.com/thinszx/radartools/internal/mdns"
)

func main() {
	host := flag.String("host", "", "capture server host (omit with -discover)")
	port := flag.Int("port", 0, "capture server port (0 = default)")
	serverDir := flag.String("server-dir", "/mnt/ssd", "capture directory on the server")
	frames := flag.Int("frames", 0, "stop after this many frames (0 = until end of stream)")
	samples := flag.Int("samples", 256, "ADC samples per chirp")
	loops := flag.Int("loops", 1, "loops per frame")
	tx := flag.Int("tx", 3, "TX channels enabled per chip")
	rx := flag.Int("rx", 4, "RX channels enabled per chip")
	discover := flag.Bool("discover", false, "find the capture server via mDNS")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logJSON := flag.Bool("log-json", false, "emit JSON log lines")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("parse log level: %v", err)
	}
	logger := logging.New(level, *logJSON, os.Stderr)

	if *discover {
		servers, err := mdns.Discover(3 * time.Second)
		if err != nil {
			log.Fatalf("mdns discovery: %v", err)
		}
		if len(servers) == 0 {
			log.Fatalf("no capture server found on the local network")
		}
		s := servers[0]
		if len(s.Addresses) == 0 {
			log.Fatalf("capture server %q advertised no addresses", s.Instance)
		}
		*host = s.Addresses[0].String()
		*port = s.Port
		logger.Info("discovered capture server",
			logging.F("instance", s.Instance), logging.F("host", *host), logging.F("port", *port))
	}

	client, err := cascade.NewLiveClient(cascade.LiveConfig{
		Host:            *host,
		Port:            *port,
		ServerDir:       *serverDir,
		SamplesPerChirp: *samples,
		LoopsPerFrame:   *loops,
		TXEnabled:       *tx,
		RXEnabled:       *rx,
	})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	logger.Info("streaming", logging.F("host", *host),
		logging.F("frame_bytes", client.ExpectedFrameBytes()))

	received := 0
	for *frames == 0 || received < *frames {
		cube, err := client.NextFrame()
		switch {
		case err == nil:
			received++
			s, l, ch, txCount := cube.Dims()
			logger.Info("frame received",
				logging.F("frame", received),
				logging.F("dims", fmt.Sprintf("(%d,%d,%d,%d)", s, l, ch, txCount)),
				logging.F("rx0_dbfs", fmt.Sprintf("%.2f", dsp.RMSDBFS(cube.Channel(0)))))

		case errors.Is(err, cascade.ErrNoData):
			logger.Info("end of stream", logging.F("frames", received))
			return

		case errors.Is(err, cascade.ErrConnectionLost):
			logger.Warn("connection lost, reconnecting", logging.F("error", err))
			if err := reconnect(client, logger); err != nil {
				log.Fatalf("reconnect: %v", err)
			}

		default:
			log.Fatalf("stream: %v", err)
		}
	}
	logger.Info("done", logging.F("frames", received))
}

// reconnect retries the explicit client reconnect with exponential backoff.
func reconnect(client *cascade.LiveClient, logger *logging.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if err := client.Reconnect(); err != nil {
			logger.Debug("reconnect attempt failed",
				logging.F("attempt", attempt), logging.F("error", err))
			return err
		}
		return nil
	}, policy)
}
