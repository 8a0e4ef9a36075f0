// Command stationd runs the station settings daemon. Configuration comes from
// the default config locations and STATION_* environment variables.
package main

import (
	"context"
	"errors"
	"log"

	"station/internal/config"
	"station/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
