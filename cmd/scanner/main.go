// Command scanner runs the deadline warning scan outside the API server,
// either once (for cron-style schedulers) or on a fixed interval.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storefront/internal/clock"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/scanner"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "scanner",
		Usage: "send edit deadline warnings for pending orders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional config file layered under the environment",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "scan repeatedly at this interval instead of once",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "orders processed in parallel (defaults to SCANNER_CONCURRENCY)",
			},
		},
		Action: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				if err := os.Setenv("CONFIG_FILE", path); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if n := c.Int("concurrency"); n > 0 {
				cfg.Scanner.Concurrency = n
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, c.Duration("interval"), out)
		},
	}
}

func run(ctx context.Context, cfg *config.Config, interval time.Duration, out io.Writer) error {
	logger := config.NewLogger(cfg.Logger).With().Str("cmd", "scanner").Logger()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	notifier, err := notify.Setup(ctx, cfg.Notify, cfg.Orders.BaseURL, logger)
	if err != nil {
		return err
	}

	runner := scanner.NewRunner(
		scanner.New(repository.NewOrderRepository(pool, logger), notifier, cfg.Scanner.Concurrency, logger),
		clock.New(),
		interval,
		logger,
	)

	if interval > 0 {
		runner.Run(ctx)
		return nil
	}

	result, err := runner.Trigger(ctx)
	if result != nil {
		if renderErr := writeResult(out, result); renderErr != nil {
			return renderErr
		}
	}
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return cli.Exit(fmt.Sprintf("%d orders could not be warned", len(result.Errors)), 2)
	}
	return nil
}

// writeResult prints a scan summary followed by one row per failed order.
func writeResult(w io.Writer, result *model.ScanResult) error {
	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Processed", "Skipped", "No recipient", "Duplicates", "Errors"})
	if err := summary.Append([]string{
		strconv.Itoa(result.Processed),
		strconv.Itoa(result.Skipped),
		strconv.Itoa(result.NoRecipient),
		strconv.Itoa(result.Duplicates),
		strconv.Itoa(len(result.Errors)),
	}); err != nil {
		return fmt.Errorf("failed to render scan summary: %w", err)
	}
	if err := summary.Render(); err != nil {
		return fmt.Errorf("failed to render scan summary: %w", err)
	}

	if len(result.Errors) == 0 {
		return nil
	}

	failures := tablewriter.NewWriter(w)
	failures.Header([]string{"#", "Error"})
	for i, msg := range result.Errors {
		if err := failures.Append([]string{strconv.Itoa(i + 1), msg}); err != nil {
			return fmt.Errorf("failed to render scan errors: %w", err)
		}
	}
	if err := failures.Render(); err != nil {
		return fmt.Errorf("failed to render scan errors: %w", err)
	}
	return nil
}
