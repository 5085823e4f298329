// Package refresh implements the refresh command.
package refresh

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/scrapekeeper/internal/common"
	"github.com/urfave/cli/v2"
)

// RefreshAction re-acquires stale documents and prints the cycle report.
func RefreshAction(c *cli.Context) error {
	rt, err := common.LoadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	maxAge, err := resolveMaxAge(c, rt)
	if err != nil {
		rt.Logger.Error("invalid max-age duration", "error", err)
		os.Exit(1)
	}

	limit := rt.Config.Refresh.Limit
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}

	report, err := rt.Engine.Refresh(c.Context, maxAge, limit)
	if err != nil {
		rt.Logger.Error("refresh cycle failed", "error", err)
		os.Exit(2)
	}

	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		rt.Logger.Error("failed to marshal report", "error", err)
		os.Exit(2)
	}
	fmt.Println(string(output))

	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

func resolveMaxAge(c *cli.Context, rt *common.Runtime) (time.Duration, error) {
	if c.IsSet("max-age") {
		return time.ParseDuration(c.String("max-age"))
	}
	return rt.Config.RefreshMaxAge()
}
