// Package main provides the entry point for the fpsmeter on-screen frame
// rate overlay. It reads a frame counter each second and renders the value in
// a small floating window using Ebiten.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-fpsmeter/pkg/fpsmeter"
)

// Version is the current version of fpsmeter.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("c", "", "Path to Lua configuration file")
	counterPath := flag.String("counter", "", "Counter file path (overrides config)")
	headless := flag.Bool("headless", false, "Run without an on-screen overlay")
	watch := flag.Bool("watch", false, "Hot-reload the config file when it changes")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("v", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("fpsmeter version %s\n", Version)
		return 0
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "No configuration file specified. Use -c to specify a config file.")
		fmt.Fprintln(os.Stderr, "Usage: fpsmeter -c <config-file> [-counter <path>] [-headless] [-watch]")
		return 1
	}

	if _, err := os.Stat(*configPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Configuration file not found: %s\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "Error accessing configuration file %s: %v\n", *configPath, err)
		}
		return 1
	}

	logger := fpsmeter.DefaultLogger()
	if *debug {
		logger = fpsmeter.DebugLogger()
	}

	opts := fpsmeter.DefaultOptions()
	opts.CounterPath = *counterPath
	opts.Headless = *headless
	opts.WatchConfig = *watch
	opts.Logger = logger

	fmt.Printf("fpsmeter %s starting with config: %s\n", Version, *configPath)

	meter, err := fpsmeter.New(*configPath, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating meter: %v\n", err)
		return 1
	}
	defer meter.Close()

	meter.SetErrorHandler(func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	})

	meter.SetEventHandler(func(e fpsmeter.Event) {
		fmt.Printf("[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Type, e.Message)
	})

	meter.Metrics().RegisterExpvar()

	if err := meter.StartReading(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			fmt.Println("Received SIGHUP, reloading configuration...")
			if err := meter.ReloadConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
			}
		default:
			fmt.Println("Shutting down...")
			if err := meter.StopReading(); err != nil {
				fmt.Fprintf(os.Stderr, "Stop error: %v\n", err)
			}
			return 0
		}
	}

	return 0
}
