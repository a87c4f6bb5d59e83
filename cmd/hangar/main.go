package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/app"
	"github.com/openflight/hangar/internal/config"
)

const version = "0.1.0"

const usage = `hangar: flight settings slots for every player in the world.

Usage:
    hangar [tui] [--config=<path>] [--prefs=<path>] [--player=<name>]
        [--retry=<seconds>] [--verbosity=<level>]
    hangar relay [--config=<path>] [--listen=<addr>] [--keep=<n>]
        [--verbosity=<level>]
    hangar export [--config=<path>] [--player=<name>] [--slot=<name>]
    hangar import <export> [--config=<path>] [--player=<name>]
    hangar status [--config=<path>] [--relay=<url>]
    hangar logs [--config=<path>] [--lines=<n>] [--level=<severity>]
    hangar -h | --help
    hangar --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --config=<path>        Config file [default: ~/.config/hangar/config.toml].
    --prefs=<path>         UI preferences file.
    --player=<name>        Act as this player instead of the configured one.
    --retry=<seconds>      Reconnect interval after a dropped link.
    --listen=<addr>        Relay listen address.
    --keep=<n>             Revisions kept per player by the relay [default: 0].
    --slot=<name>          Export one slot instead of the whole database.
    --relay=<url>          Relay to query instead of the configured one.
    --lines=<n>            Log lines to show [default: 100].
    --level=<severity>     Lowest log level: info, warning, error [default: info].
    --verbosity=<level>    Log verbosity [default: 0].

An <export> of "-" is read from standard input.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := docopt.ParseArgs(usage, args, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hangar: %v\n", err)
		return 2
	}

	configPath, _ := opts.String("--config")
	player := optString(opts, "--player")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := setupLogging(configPath, optString(opts, "--verbosity")); err != nil {
		fmt.Fprintf(os.Stderr, "hangar: %v\n", err)
		return 1
	}
	defer glog.Flush()

	switch {
	case optBool(opts, "relay"):
		keep, _ := opts.Int("--keep")
		err = app.RunRelay(ctx, app.RelayOptions{
			ConfigPath: configPath,
			Listen:     optString(opts, "--listen"),
			Keep:       keep,
		})

	case optBool(opts, "export"):
		var out string
		out, err = app.Export(ctx, configPath, player, optString(opts, "--slot"))
		if err == nil {
			fmt.Println(out)
		}

	case optBool(opts, "import"):
		var text, name string
		text, err = readExport(optString(opts, "<export>"))
		if err == nil {
			name, err = app.Import(ctx, configPath, player, text)
		}
		if err == nil {
			if name == "" {
				fmt.Println("imported database")
			} else {
				fmt.Printf("imported slot %q\n", name)
			}
		}

	case optBool(opts, "status"):
		var out string
		out, err = app.Status(ctx, configPath, optString(opts, "--relay"))
		if err == nil {
			fmt.Print(out)
		}

	case optBool(opts, "logs"):
		lines, _ := opts.Int("--lines")
		var out []string
		out, err = app.Logs(configPath, optString(opts, "--level"), lines)
		for _, line := range out {
			fmt.Println(line)
		}

	default:
		retry, _ := opts.Int("--retry")
		err = app.Run(ctx, app.Options{
			ConfigPath: configPath,
			PrefsPath:  optString(opts, "--prefs"),
			Player:     player,
			RetryEvery: retry,
		})
	}

	if err != nil {
		glog.Errorf("hangar: %v", err)
		fmt.Fprintf(os.Stderr, "hangar: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging sends glog output to files under the configured log dir so
// nothing is written over the TUI.
func setupLogging(configPath, verbosity string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	for name, value := range map[string]string{
		"log_dir":         cfg.LogDir,
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"v":               verbosity,
	} {
		if value == "" {
			continue
		}
		if err := flag.Set(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func readExport(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func optString(opts docopt.Opts, name string) string {
	if v, ok := opts[name].(string); ok {
		return v
	}
	return ""
}

func optBool(opts docopt.Opts, name string) bool {
	v, _ := opts.Bool(name)
	return v
}
