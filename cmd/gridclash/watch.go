package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/replay"
)

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "ws://localhost:8080", "Base WebSocket URL of the gridclash server")
	battleID := fs.String("battle", "", "ID of the stored battle to replay")
	fs.Parse(args)

	if *battleID == "" {
		fmt.Fprintln(os.Stderr, "watch: -battle is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := strings.TrimSuffix(*serverURL, "/") + "/api/battles/" + *battleID + "/replay"
	count := 0
	err := replay.Watch(ctx, url, func(s engine.Step) {
		count++
		printStep(os.Stdout, s)
	})
	if err != nil {
		log.Fatalf("Replay failed after %d steps: %v", count, err)
	}
	fmt.Printf("\nReplay finished, %d steps\n", count)
}
