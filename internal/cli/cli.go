// Package cli implements the calcache operator tool: inspect and seed the
// timetable cache of the configured backend.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	stdslog "log/slog"

	"github.com/unkn0wn-root/calcache"
	"github.com/unkn0wn-root/calcache/calendar"
	asynchook "github.com/unkn0wn-root/calcache/hooks/async"
	"github.com/unkn0wn-root/calcache/internal/backend"
	"github.com/unkn0wn-root/calcache/internal/config"
	logruslog "github.com/unkn0wn-root/calcache/log/logrus"
	sloglog "github.com/unkn0wn-root/calcache/log/slog"
	zaplog "github.com/unkn0wn-root/calcache/log/zap"
	"github.com/unkn0wn-root/calcache/sloghooks"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitNotFresh = 3
)

const usage = `usage: calcache [flags] <command> <key>

commands:
  has <key>    exit 0 if a fresh record exists, 3 otherwise
  get <key>    print stored events as JSON
  save <key>   read a JSON array of events from stdin and store it

configuration is read from CALCACHE_* environment variables; flags override.
`

// IO bundles the process streams so tests can substitute them.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one command and returns the process exit code.
func Run(ctx context.Context, cfg config.Config, args []string, stdio IO) int {
	fs := flag.NewFlagSet("calcache", flag.ContinueOnError)
	fs.SetOutput(stdio.Stderr)
	fs.Usage = func() {
		fmt.Fprint(stdio.Stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "store backend (memory, sqlite, redis, bigcache, ristretto)")
	fs.StringVar(&cfg.Collection, "collection", cfg.Collection, "collection holding cache records")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "freshness window")
	fs.BoolVar(&cfg.Disabled, "disabled", cfg.Disabled, "treat the cache as disabled")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return ExitUsage
	}
	cmd, key := fs.Arg(0), fs.Arg(1)
	switch cmd {
	case "has", "get", "save":
	default:
		fmt.Fprintf(stdio.Stderr, "calcache: unknown command %q\n", cmd)
		fs.Usage()
		return ExitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitUsage
	}

	logger, flush, err := newLogger(cfg, stdio.Stderr)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: logger: %v\n", err)
		return ExitUsage
	}
	defer flush()

	hooks := asynchook.New(sloghooks.New(
		stdslog.New(stdslog.NewTextHandler(stdio.Stderr, &stdslog.HandlerOptions{Level: stdslog.LevelWarn})),
		sloghooks.Options{},
	), 1, 64)
	defer hooks.Close()

	st, err := backend.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitError
	}
	cache, err := calcache.New(calcache.Options{
		Store:      st,
		Collection: cfg.Collection,
		TTL:        cfg.TTL,
		Disabled:   cfg.CacheDisabled(),
		Logger:     logger,
		Hooks:      hooks,
	})
	if err != nil {
		_ = st.Close(ctx)
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitError
	}
	defer cache.Close(ctx)

	switch cmd {
	case "has":
		return runHas(ctx, cache, key, stdio)
	case "get":
		return runGet(ctx, cache, key, stdio)
	default:
		return runSave(ctx, cache, key, stdio)
	}
}

func runHas(ctx context.Context, c calcache.Cache, key string, stdio IO) int {
	fresh, err := c.Has(ctx, key)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitError
	}
	if !fresh {
		fmt.Fprintln(stdio.Stdout, "stale")
		return ExitNotFresh
	}
	fmt.Fprintln(stdio.Stdout, "fresh")
	return ExitOK
}

func runGet(ctx context.Context, c calcache.Cache, key string, stdio IO) int {
	events, err := c.Get(ctx, key)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitError
	}
	if events == nil {
		events = []calendar.Event{}
	}
	enc := json.NewEncoder(stdio.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: write: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func runSave(ctx context.Context, c calcache.Cache, key string, stdio IO) int {
	var events []calendar.Event
	dec := json.NewDecoder(stdio.Stdin)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&events); err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: read events: %v\n", err)
		return ExitUsage
	}
	if err := c.Save(ctx, key, events); err != nil {
		fmt.Fprintf(stdio.Stderr, "calcache: %v\n", err)
		return ExitError
	}
	if !c.Enabled() {
		fmt.Fprintln(stdio.Stdout, "cache disabled; nothing saved")
		return ExitOK
	}
	fmt.Fprintf(stdio.Stdout, "saved %d events\n", len(events))
	return ExitOK
}

// newLogger builds the adapter named by cfg.Logger. flush must be called
// before exit.
func newLogger(cfg config.Config, stderr io.Writer) (calcache.Logger, func(), error) {
	switch cfg.Logger {
	case "zap":
		l, err := zaplog.New(cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Sync() }, nil
	case "logrus":
		l, err := logruslog.New(stderr, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	case "slog":
		l, err := sloglog.New(stderr, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	}
	return calcache.NopLogger{}, func() {}, nil
}
