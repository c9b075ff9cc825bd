package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"

	"github.com/liveflow/hls-gateway/config"
	"github.com/liveflow/hls-gateway/gateway"
	"github.com/liveflow/hls-gateway/internal/debugpprof"
	"github.com/liveflow/hls-gateway/log"
	"github.com/liveflow/hls-gateway/metrics"
)

func main() {
	fs := flag.NewFlagSet("hls-gateway", flag.ExitOnError)
	cli := config.Cli{}
	config.RegisterFlags(fs, &cli)
	version := fs.Bool("version", false, "print application version")
	_ = fs.String("config", "", "config file (optional)")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("GATEWAY"),
	); err != nil {
		fmt.Fprintln(os.Stderr, "error parsing cli:", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println("hls-gateway version:", config.Version)
		return
	}

	log.SetDebugLogging(cli.DebugLogging)

	if err := os.MkdirAll(cli.TranscodeDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error creating transcode dir:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	group.Go(func() error {
		select {
		case sig := <-sigCh:
			log.LogNoRequestID("received shutdown signal", "signal", sig.String())
			cancel()
			return nil
		case <-ctx.Done():
			return nil
		}
	})

	gw := gateway.New(cli)
	group.Go(func() error {
		return gw.ListenAndServe(ctx)
	})

	if cli.PromPort != 0 {
		group.Go(func() error {
			return metrics.ListenAndServe(cli.PromPort)
		})
	}

	if cli.PprofPort != 0 {
		group.Go(func() error {
			return debugpprof.ListenAndServe(cli.PprofPort)
		})
	}

	if err := group.Wait(); err != nil {
		log.LogNoRequestID("shutdown complete", "reason", err.Error())
	}
}
