package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/config"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
)

// inspect fetches the dashboard feed once and prints what the poller would make of it.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	url := pflag.String("url", cfg.DashboardURL(), "dashboard endpoint to fetch")
	timeout := pflag.Duration("timeout", cfg.FetchTimeout, "fetch timeout")
	raw := pflag.Bool("raw", false, "also print the raw response body")
	pflag.Parse()

	common.SetTestLoggerNop()

	fetcher := iot.NewHTTPFetcher(*timeout)

	startTime := time.Now()
	text, err := fetcher.FetchText(context.Background(), *url)
	usedTime := time.Since(startTime)
	if err != nil {
		log.Fatalf("fetch failed after %v: %v", usedTime, err)
	}
	fmt.Printf("fetched %v bytes from %s in %v\n", len(text), *url, usedTime)

	if *raw {
		fmt.Println(text)
	}

	var outer map[string]any
	if err := json.Unmarshal([]byte(text), &outer); err == nil {
		if _, wrapped := outer["body"].(string); wrapped {
			fmt.Printf("envelope: gateway (statusCode=%v)\n", outer["statusCode"])
		} else {
			fmt.Printf("envelope: none\n")
		}
	}

	snapshot, err := iot.ParseAndNormalize(text)
	if err != nil {
		log.Fatalf("parse failed: %v", err)
	}

	history := iot.FlattenAll(snapshot.IoTReadings)
	live := iot.FlattenAll(snapshot.RealTimeDataMonitor)
	fmt.Printf("IoTReadings=%v RealTimeDataMonitor=%v\n", len(history), len(live))

	now := time.Now()
	views := iot.BuildDeviceViews(live, now, iot.Thresholds{
		OfflineAfter: cfg.OfflineAfter,
		TempMin:      cfg.TempMin,
		TempMax:      cfg.TempMax,
		HumMin:       cfg.HumMin,
		HumMax:       cfg.HumMax,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tSTATUS\tTEMP\tHUM\tAGE")
	for _, v := range views {
		age := "--"
		if ts, ok := v.Time(); ok {
			age = now.Sub(ts).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.DeviceID, v.Label, v.TempText, v.HumText, age)
	}
	_ = w.Flush()
}
