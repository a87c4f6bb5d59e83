package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/openflight/hangar/internal/logtail"
	"github.com/openflight/hangar/internal/relayapi"
	"github.com/openflight/hangar/internal/replication"
)

// Status queries a relay and renders its connected players as a table.
// An empty relay uses the configured relay_url, then the listen address.
func Status(ctx context.Context, configPath, relay string) (string, error) {
	cfg, err := loadConfig(Options{ConfigPath: configPath})
	if err != nil {
		return "", err
	}
	if relay == "" {
		relay = cfg.RelayURL
	}
	if relay == "" {
		relay = cfg.Listen
	}

	client, err := relayapi.NewClient(relay)
	if err != nil {
		return "", err
	}
	status, err := client.FetchStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("relay %s: %w", client.BaseURL(), err)
	}
	return formatStatus(client.BaseURL(), status), nil
}

func formatStatus(base string, status *replication.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d players, %d sessions, ceiling %s\n",
		base, len(status.Players), status.Sessions, humanize.Bytes(uint64(status.Ceiling)))
	if len(status.Players) == 0 {
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tSESSIONS\tSIZE\tUPDATED\tCONTROLLED BY")
	for _, p := range status.Players {
		updated := "never"
		if at, ok := p.UpdatedAt(); ok {
			updated = humanize.Time(at)
		}
		owner := p.Owner
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", p.Player, p.Sessions, humanize.Bytes(uint64(p.Bytes)), updated, owner)
	}
	_ = w.Flush()
	return b.String()
}

// Logs returns the tail of hangar's newest log at level or above.
func Logs(configPath, level string, lines int) ([]string, error) {
	cfg, err := loadConfig(Options{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}
	sev, err := logtail.ParseSeverity(level)
	if err != nil {
		return nil, err
	}
	return logtail.Tail(cfg.LogDir, filepath.Base(os.Args[0]), sev, lines)
}
