// housectl is the operator CLI.
//
// Usage:
//
//	housectl migrate [--country sg]
//	housectl search --q acme [--country mx] [--format json]
//	housectl reports --slug acme-de-mexico
//	housectl cache flush
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"companyhouse/internal/app"
	"companyhouse/internal/config"
	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/logging"
	"companyhouse/internal/services/companies"
	"companyhouse/internal/services/pricing"
	"companyhouse/internal/services/search"
)

var version = "dev"

func main() {
	a := &cli.App{
		Name:    "housectl",
		Usage:   "Operate the company search and report store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "countries-file",
				Usage:   "Country registry file (built-in sg/mx when empty)",
				EnvVars: []string{"COUNTRIES_FILE"},
			},
			&cli.BoolFlag{
				Name:    "seed-demo",
				Usage:   "Query the in-memory demo data set instead of Postgres",
				EnvVars: []string{"SEED_DEMO"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   3 * time.Second,
				Usage:   "Per-country query timeout",
				EnvVars: []string{"QUERY_TIMEOUT"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			searchCommand(),
			reportsCommand(),
			cacheCommand(),
		},
	}
	if err := a.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the embedded schema to every country database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "country", Usage: "Only migrate this country"},
		},
		Action: func(c *cli.Context) error {
			reg, err := countries.Load(c.String("countries-file"))
			if err != nil {
				return err
			}
			if only := c.String("country"); only != "" {
				cfg, err := reg.Get(only)
				if err != nil {
					return err
				}
				if reg, err = countries.NewRegistry(cfg); err != nil {
					return err
				}
			}
			dbs, closeAll, err := app.ConnectCountries(c.Context, reg)
			if err != nil {
				return err
			}
			defer closeAll()
			for _, db := range dbs {
				v, err := db.DB.Migrate(c.Context, db.Config.PricingSchema)
				if err != nil {
					return fmt.Errorf("country %s: %w", db.Config.Code, err)
				}
				fmt.Printf("%s\t%s\tversion %d\n", db.Config.Code, db.Config.PricingSchema, v)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Run a ranked search across countries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "Query", Required: true},
			&cli.StringFlag{Name: "country", Usage: "Restrict to one country"},
			&cli.IntFlag{Name: "limit", Value: search.DefaultSearchLimit},
			&cli.BoolFlag{Name: "suggest", Usage: "Name-only autocomplete matching"},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "table or json"},
		},
		Action: func(c *cli.Context) error {
			dir, closeAll, err := directory(c)
			if err != nil {
				return err
			}
			defer closeAll()
			engine := search.New(dir, search.Options{})

			var results []domain.SearchResult
			if c.Bool("suggest") {
				results, err = engine.Suggest(c.Context, c.String("q"), c.Int("limit"))
			} else {
				results, err = engine.SearchAll(c.Context, c.String("q"), c.String("country"), c.Int("limit"))
			}
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return printJSON(results)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tCOUNTRY\tID\tNAME\tSLUG")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.RelevanceScore, r.Country, r.ID, r.Name, r.Slug)
			}
			return w.Flush()
		},
	}
}

func reportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "List the priced reports for a company",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "slug", Required: true},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "table or json"},
		},
		Action: func(c *cli.Context) error {
			dir, closeAll, err := directory(c)
			if err != nil {
				return err
			}
			defer closeAll()
			d, err := companies.New(dir, pricing.New(dir)).Detail(c.Context, c.String("slug"))
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return printJSON(d)
			}
			fmt.Printf("%s (%s, %s)\n", d.Company.Name, d.CountryName, d.Currency)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREPORT\tPRICE")
			for _, r := range d.Reports {
				fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Name, r.Price.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the shared search cache",
		Subcommands: []*cli.Command{
			{
				Name:  "flush",
				Usage: "Drop every cached search and suggestion",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if cfg.CacheBackend != "redis" {
						return fmt.Errorf("cache backend %q is process-local; flush it through DELETE /api/search/cache", cfg.CacheBackend)
					}
					stores, closeAll, err := app.OpenStores(c.Context, cfg, zap.NewNop())
					if err != nil {
						return err
					}
					defer closeAll()
					if err := stores.Cache.Flush(c.Context); err != nil {
						return err
					}
					fmt.Println("search cache flushed")
					return nil
				},
			},
		},
	}
}

func directory(c *cli.Context) (*countries.Directory, app.Closer, error) {
	logger, err := logging.New("development", c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	reg, err := countries.Load(c.String("countries-file"))
	if err != nil {
		return nil, nil, err
	}
	adapters, closeAll, err := app.Adapters(c.Context, reg, c.Bool("seed-demo"))
	if err != nil {
		return nil, nil, err
	}
	dir, err := countries.NewDirectory(reg, adapters, countries.GuardConfig{
		Timeout: c.Duration("timeout"),
		Logger:  logger,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return dir, closeAll, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
