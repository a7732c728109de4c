package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Debug bool `help:"Whether to enable debug logging."`

	Run struct {
		Catalog     string   `help:"Level catalog in levels/." default:"levels.yaml"`
		Level       string   `help:"Level to start on; defaults to the first."`
		Hold        []string `help:"Flight tick windows to hold jump, e.g. 120-160." placeholder:"FROM-TO"`
		HoldFalling bool     `help:"Hold jump for the whole descent."`
		Attempts    int      `help:"Attempts to play before giving up." default:"3"`
		MaxTicks    int      `help:"Tick limit per attempt." default:"5000"`
		Delta       float64  `help:"Seconds per tick." default:"0.016666667"`
		All         bool     `help:"Keep playing the next level after a dunk."`
	} `cmd:"" help:"Play levels headlessly with a scripted hold pattern."`

	Levels struct {
		Catalog string `help:"Level catalog in levels/." default:"levels.yaml"`
	} `cmd:"" help:"List the levels in a catalog."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("dunksim"),
		kong.Description("headless dunk simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	switch ctx.Command() {
	case "run":
		holds, err := parseHoldWindows(CLI.Run.Hold)
		if err != nil {
			writeError(err)
		}
		reports, err := run(runOptions{
			Catalog:     CLI.Run.Catalog,
			Level:       CLI.Run.Level,
			Holds:       holds,
			HoldFalling: CLI.Run.HoldFalling,
			Attempts:    CLI.Run.Attempts,
			MaxTicks:    CLI.Run.MaxTicks,
			Delta:       CLI.Run.Delta,
			All:         CLI.Run.All,
		}, log.Logger)
		if err != nil {
			writeError(err)
		}
		summarize(reports)
	case "levels":
		if err := listLevels(CLI.Levels.Catalog); err != nil {
			writeError(err)
		}
	}
}
