// Package main runs the dmscreen command line.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dmscreencmd "github.com/louisbranch/dmscreen/internal/cmd/dmscreen"
	"github.com/louisbranch/dmscreen/internal/platform/config"
)

func main() {
	log.SetPrefix("[DMSCREEN] ")
	cfg, err := dmscreencmd.ParseConfig(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dmscreencmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("dmscreen: %v", err)
	}
}
