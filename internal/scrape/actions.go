// Package scrape implements the scrape command.
package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/scrapekeeper/internal/common"
	"github.com/dtnitsch/scrapekeeper/pkg/engine"
	"github.com/dtnitsch/scrapekeeper/pkg/fetcher"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ScrapeAction acquires one URL and prints the structured document.
func ScrapeAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	input := c.Args().First()
	if input == "" {
		fmt.Fprintln(os.Stderr, "Error: No URL provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  scrapekeeper scrape "https://example.com"`)
		fmt.Fprintln(os.Stderr, `  scrapekeeper scrape --analyze --selector price=".product-price" "https://example.com"`)
		os.Exit(1)
	}

	selectors, err := parseSelectors(c.StringSlice("selector"))
	if err != nil {
		rt.Logger.Error("invalid selector flag", "error", err)
		os.Exit(1)
	}

	result, err := rt.Engine.Acquire(c.Context, input, engine.AcquireOptions{
		Selectors:    selectors,
		CustomPrompt: c.String("prompt"),
		Analyze:      c.Bool("analyze"),
		Preview:      c.Bool("preview"),
	})
	if err != nil {
		rt.Logger.Error("scrape failed", "url", input, "error", err)
		var fetchErr *fetcher.FetchError
		if errors.As(err, &fetchErr) {
			fmt.Fprintln(os.Stderr, fetchErr.Detail())
		}
		os.Exit(2)
	}

	var output []byte
	var marshalErr error
	if strings.ToLower(c.String("format")) == "yaml" {
		output, marshalErr = yaml.Marshal(result.Document)
	} else {
		output, marshalErr = json.MarshalIndent(result.Document, "", "  ")
	}
	if marshalErr != nil {
		rt.Logger.Error("failed to marshal document", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(output))

	if !c.Bool("preview") && !c.Bool("quiet") {
		fmt.Fprintf(os.Stderr, "Saved as record #%d\n", result.RecordID)
	}

	return nil
}

// parseSelectors turns repeated name=css flags into the custom selector
// map, rejecting malformed entries before any network work happens.
func parseSelectors(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	selectors := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, css, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		css = strings.TrimSpace(css)
		if !ok || name == "" || css == "" {
			return nil, fmt.Errorf("selector %q is not in name=css form", pair)
		}
		selectors[name] = css
	}
	return selectors, nil
}
