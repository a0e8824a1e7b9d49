// Command mediaprocd is a thin composition root over the processor
// runtime and registry: it registers the reference processor types,
// opens one registry instance, and serves the REST adapter over HTTP.
//
// Configuration is flag-only with stdlib structured logging; there is
// no config-file framework and no third-party CLI library, since a
// daemon with five knobs doesn't need one.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rantoniello/mediaprocessors/catalog"
	"github.com/rantoniello/mediaprocessors/procs/forwarder"
	"github.com/rantoniello/mediaprocessors/procs/tee"
	"github.com/rantoniello/mediaprocessors/registry"
	"github.com/rantoniello/mediaprocessors/restapi"
)

func main() {
	listen := flag.String("listen", ":8080", "address to serve the REST adapter on")
	prefix := flag.String("prefix", "procs", "URL path segment / enumeration key for the registry")
	href := flag.String("href", "", "base URL used to build enumeration self-links")
	maxSlots := flag.Int("max-slots", 256, "number of processor slots the registry opens with")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(log)

	cat := catalog.Default()
	if st := cat.Register(forwarder.New(forwarder.Name)); !st.Ok() {
		log.Error("register forwarder", "status", st)
		os.Exit(1)
	}
	if st := cat.Register(tee.New()); !st.Ok() {
		log.Error("register tee", "status", st)
		os.Exit(1)
	}

	reg, st := registry.Open(cat, log, *maxSlots, *prefix, *href)
	if !st.Ok() {
		log.Error("open registry", "status", st)
		os.Exit(1)
	}
	defer reg.Close()

	handler := restapi.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("serving", "addr", *listen, "prefix", *prefix)
	if err := restapi.Serve(ctx, *listen, handler); err != nil {
		log.Error("serve", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
