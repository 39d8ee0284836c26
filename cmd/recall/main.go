// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage/badger"
)

func main() {
	app := &cli.App{
		Name:   "recall",
		Usage:  "Adaptive retrieval and ranking over workspace snippets",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load snippets into a workspace, one per input line",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "workspace",
						Aliases:  []string{"w"},
						Usage:    "Workspace to seed",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Input file (defaults to stdin)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Snippet source (memory, doc, ops)",
						Value: core.SourceDoc,
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Run a recall against a workspace",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "workspace",
						Aliases:  []string{"w"},
						Usage:    "Workspace to query",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Retrieval strategy (auto, dense, sparse, hybrid)",
						Value: string(core.StrategyAuto),
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: core.DefaultTopK,
					},
					&cli.IntFlag{
						Name:  "budget",
						Usage: "Token budget for returned snippets (0 disables)",
						Value: core.DefaultBudgetTokens,
					},
					&cli.BoolFlag{
						Name:  "no-mmr",
						Usage: "Disable diversity-aware selection",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics for a workspace",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "workspace",
						Aliases:  []string{"w"},
						Usage:    "Workspace to inspect",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewSnippetRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	input := os.Stdin
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	workspace := c.String("workspace")
	source := c.String("source")
	var snippets []*core.Snippet
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		snippets = append(snippets, &core.Snippet{
			WorkspaceId: workspace,
			Source:      source,
			Text:        text,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(snippets) == 0 {
		return fmt.Errorf("no snippets to seed")
	}

	added, err := repo.AddSnippets(ctx, snippets...)
	if err != nil {
		return fmt.Errorf("failed to add snippets: %w", err)
	}
	fmt.Printf("Seeded %d snippets into workspace %s\n", len(added), workspace)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query text is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	sys, err := recall.NewSystem(c.String("db"), false, recall.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()

	opts := core.DefaultRecallOpts(c.String("workspace"))
	opts.Strategy = core.Strategy(c.String("strategy"))
	opts.TopK = c.Int("top-k")
	opts.BudgetTokens = c.Int("budget")
	opts.UseMMR = !c.Bool("no-mmr")

	result, err := sys.Engine().Recall(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("recall failed: %w", err)
	}

	d := result.Diagnostics
	fmt.Printf("strategy=%s took=%.1fms cache_hit=%v items=%d\n",
		d.Strategy, d.TookMs, d.CacheHit, len(result.Items))
	for i, item := range result.Items {
		fmt.Printf("%2d. [%.4f] (%s) %s\n", i+1, item.Score, item.Source, item.Text)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewSnippetRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	workspace := c.String("workspace")
	count, err := repo.CountSnippets(ctx, workspace)
	if err != nil {
		return fmt.Errorf("failed to count snippets: %w", err)
	}
	fmt.Printf("workspace %s: %d snippets\n", workspace, count)
	return nil
}
