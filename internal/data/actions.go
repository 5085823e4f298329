// Package data implements the data inspection commands.
package data

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/scrapekeeper/internal/common"
	"github.com/urfave/cli/v2"
)

func ListAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	limit := c.Int("limit")
	page := c.Int("page")
	if page < 1 {
		page = 1
	}

	records, total, err := rt.DB.List(limit, (page-1)*limit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No records found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-35s %-22s %-50s\n", "ID", "Scraped", "Title", "Method", "URL")
	fmt.Println(strings.Repeat("-", 135))
	for _, r := range records {
		fmt.Printf("%-6d %-20s %-35s %-22s %-50s\n",
			r.ID,
			r.ScrapedAt.Format("2006-01-02 15:04:05"),
			clip(r.Title, 35),
			r.Method,
			clip(r.URL, 50),
		)
	}

	fmt.Printf("\nPage %d, showing %d of %d records\n", page, len(records), total)
	fmt.Printf("\nTip: Use 'scrapekeeper data show <id>' to see the full document\n")

	return nil
}

func ShowAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	rec, err := rt.DB.GetByID(id)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(rec.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	fmt.Println(string(output))

	return nil
}

func SearchAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	query := c.Args().First()
	if query == "" {
		return fmt.Errorf("no search query provided")
	}

	records, err := rt.DB.Search(query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No records match %q\n", query)
		return nil
	}

	for i, r := range records {
		fmt.Printf("%2d. [#%d] %s\n", i+1, r.ID, r.Title)
		fmt.Printf("    %s (scraped %s)\n", r.URL, r.ScrapedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\nTotal: %d matches\n", len(records))

	return nil
}

func DeleteAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := rt.DB.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted record %d\n", id)

	return nil
}

func StatsAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.DB.GetStats()
	if err != nil {
		return err
	}

	fmt.Println("Corpus stats")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Total records: %d\n", stats.TotalScraped)
	fmt.Printf("Unique URLs:   %d\n", stats.UniqueURLs)
	if stats.TotalScraped > 0 {
		fmt.Printf("Last scraped:  %s\n", stats.LastScrapedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Database:      %s\n", rt.DB.Path())

	return nil
}

func parseID(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("no record ID provided")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record ID %q", arg)
	}
	return id, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
