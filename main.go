package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/scrapekeeper/internal/data"
	refreshcmd "github.com/dtnitsch/scrapekeeper/internal/refresh"
	"github.com/dtnitsch/scrapekeeper/internal/scrape"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "scrapekeeper",
		Usage: "Acquire web pages as structured documents and keep them fresh",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "override the database path from the config",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "scrape",
				Usage:     "Fetch a URL and store it as a structured document",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "selector",
						Usage: "custom field as name=css, repeatable",
					},
					&cli.BoolFlag{
						Name:  "analyze",
						Usage: "attach an AI analysis to the document",
					},
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "custom analysis instructions",
					},
					&cli.BoolFlag{
						Name:  "preview",
						Usage: "print the document without persisting it",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "output format: json or yaml",
					},
				},
				Action: scrape.ScrapeAction,
			},
			{
				Name:  "refresh",
				Usage: "Re-acquire documents whose last scrape is older than the threshold",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "max-age",
						Usage: "staleness threshold as a Go duration, e.g. 60s or 24h",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum documents to refresh in one cycle",
					},
				},
				Action: refreshcmd.RefreshAction,
			},
			{
				Name:  "data",
				Usage: "Inspect the stored corpus",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List stored documents",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20},
							&cli.IntFlag{Name: "page", Value: 1},
						},
						Action: data.ListAction,
					},
					{
						Name:      "show",
						Usage:     "Print one stored document as JSON",
						ArgsUsage: "<id>",
						Action:    data.ShowAction,
					},
					{
						Name:      "search",
						Usage:     "Search titles and URLs",
						ArgsUsage: "<query>",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20},
						},
						Action: data.SearchAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete a stored document",
						ArgsUsage: "<id>",
						Action:    data.DeleteAction,
					},
					{
						Name:   "stats",
						Usage:  "Show corpus statistics",
						Action: data.StatsAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
