// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Command prefvec is a small operational CLI for the preference engine:
// it seeds demo profiles, inspects and mutates user profiles, and runs
// similarity queries against any configured store backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/jllopis/prefvec/pkg/config"
	"github.com/jllopis/prefvec/pkg/profile"
	"github.com/jllopis/prefvec/pkg/similarity"
	"github.com/jllopis/prefvec/pkg/store"
	"github.com/jllopis/prefvec/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (yaml)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdown, err := telemetry.Init("prefvec", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer shutdown(context.Background())

	metrics, err := telemetry.NewEngineMetrics()
	if err != nil {
		fatal(err)
	}

	s, err := store.Open(ctx, store.Options{
		Backend:    cfg.Store.Backend,
		Addr:       cfg.Store.Addr,
		DB:         cfg.Store.DB,
		DSN:        cfg.Store.DSN,
		Collection: cfg.Store.Collection,
	})
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	manager := profile.NewManager(s,
		profile.WithLearningRate(cfg.Engine.LearningRate),
		profile.WithMetrics(metrics),
	)
	searcher := similarity.NewSearcher(manager, similarity.WithMetrics(metrics))

	if err := run(ctx, manager, searcher, args); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, manager *profile.Manager, searcher *similarity.Searcher, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "dims":
		return printJSON(manager.ListFeatureDimensions())

	case "get":
		if len(rest) != 1 {
			return usageError("get <user_id>")
		}
		p, err := manager.GetOrCreate(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(p)

	case "add-evidence":
		if len(rest) < 5 {
			return usageError("add-evidence <user_id> <feature> <sentiment> <score> <sentence...>")
		}
		score, err := strconv.ParseFloat(rest[3], 64)
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", rest[3], err)
		}
		p, err := manager.AddEvidence(ctx, rest[0], rest[1], strings.Join(rest[4:], " "), rest[2], score)
		if err != nil {
			return err
		}
		return printJSON(p)

	case "set-weights":
		if len(rest) < 2 {
			return usageError("set-weights <user_id> <feature=weight> [feature=weight ...]")
		}
		weights := make(map[string]float64, len(rest)-1)
		for _, pair := range rest[1:] {
			name, raw, ok := strings.Cut(pair, "=")
			if !ok {
				return usageError("set-weights expects feature=weight pairs")
			}
			w, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q: %w", raw, err)
			}
			weights[name] = w
		}
		p, err := manager.SetWeights(ctx, rest[0], weights)
		if err != nil {
			return err
		}
		return printJSON(p)

	case "similar":
		fs := flag.NewFlagSet("similar", flag.ContinueOnError)
		k := fs.Int("k", 5, "number of neighbors to return")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usageError("similar [-k N] <user_id>")
		}
		results, err := searcher.TopK(ctx, fs.Arg(0), *k)
		if err != nil {
			return err
		}
		return printJSON(results)

	case "seed":
		return seed(ctx, manager)

	case "version":
		fmt.Println(version)
		return nil

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// seed loads a small set of demo shoppers with distinct preference
// shapes, concurrently, so similarity queries have something to rank.
func seed(ctx context.Context, manager *profile.Manager) error {
	demo := map[string]map[string]float64{
		"u_001": {"size": 0.9, "price": 0.8, "shipping": 0.3},
		"u_002": {"size": 0.85, "price": 0.75, "brand": 0.4},
		"u_003": {"color": 0.9, "trend": 0.9, "price": 0.2},
		"u_004": {"material": 0.8, "durability": 0.9, "brand": 0.7},
		"u_005": {"price": 0.95, "shipping": 0.8},
	}

	g, ctx := errgroup.WithContext(ctx)
	for userID, weights := range demo {
		g.Go(func() error {
			if _, err := manager.SyncRecord(ctx, userID, weights, nil); err != nil {
				return fmt.Errorf("seed %s: %w", userID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("seeded %d demo profiles\n", len(demo))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(usage string) error {
	return fmt.Errorf("usage: prefvec %s", usage)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `prefvec - user preference vector engine CLI

Usage:
  prefvec [-config path] <command> [args]

Commands:
  dims                                                  list feature dimensions
  get <user_id>                                         fetch (or create) a profile
  add-evidence <user_id> <feature> <sentiment> <score> <sentence...>
                                                        record a sentiment observation
  set-weights <user_id> <feature=weight> [...]          overwrite weights directly
  similar [-k N] <user_id>                              rank similar users
  seed                                                  load demo profiles
  version                                               print version
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
