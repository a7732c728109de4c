package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/getsentry/sentry-go"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/dunk/common"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/obj"
	"github.com/milk9111/dunk/prefabs"
	"github.com/milk9111/dunk/system"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Catalog   string        `help:"Level catalog in levels/ (basename, .yaml optional)." default:"levels.yaml"`
	Level     string        `help:"Name of the level to start on."`
	Manifest  string        `help:"Prefab manifest naming the role models." default:"manifest.yaml"`
	Debug     bool          `help:"Enable debug logging and the debug overlay."`
	Watch     bool          `help:"Reload edited catalogs and scripts from disk."`
	SentryDSN string        `name:"sentry-dsn" help:"Report load failures to Sentry." env:"DUNK_SENTRY_DSN"`
	Timeout   time.Duration `help:"How long to wait for models to load." default:"10s"`
	Monitor   bool          `short:"m" help:"Use the base monitor instead of the primary one."`
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("dunk"),
		kong.Description("jump, flip and dunk"),
		kong.UsageOnError(),
	)

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: CLI.SentryDSN}); err != nil {
			log.Warn().Err(err).Msg("sentry disabled")
		}
		defer sentry.Flush(2 * time.Second)
	}

	game, err := newGame()
	if err != nil {
		if CLI.SentryDSN != "" {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		log.Fatal().Err(err).Msg("could not start")
	}
	if game.watcher != nil {
		defer game.watcher.Close()
	}

	if CLI.Monitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("dunk")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("game loop")
	}
}

func newGame() (*Game, error) {
	catalog, err := levels.LoadCatalog(CLI.Catalog)
	if err != nil {
		return nil, err
	}
	start, err := levelIndex(catalog, CLI.Level)
	if err != nil {
		return nil, err
	}
	tuning, err := system.LoadTuning()
	if err != nil {
		return nil, err
	}
	manifest, err := prefabs.LoadManifest(CLI.Manifest)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), CLI.Timeout)
	defer cancel()
	bindings, err := system.Bind(ctx, &obj.PrefabLoader{}, manifest, log.Logger.With().Str("component", "bind").Logger())
	if err != nil {
		return nil, err
	}

	anim := obj.NewAnimatorFor(bindings.Character)
	feedback := newFeedbackOverlay()
	camera := &obj.CameraRig{}
	scenery := obj.NewSceneryRoot()
	session, err := system.NewSession(catalog, tuning,
		system.Collaborators{Animator: anim, Feedback: feedback, Camera: camera, Scenery: scenery},
		system.WithStartLevel(start),
		system.WithClips(manifest.Clips),
	)
	if err != nil {
		return nil, err
	}
	if err := session.Attach(bindings); err != nil {
		return nil, err
	}

	var watcher *prefabs.Watcher
	if CLI.Watch {
		watcher, err = prefabs.NewWatcher("levels", "prefabs", "prefabs/scripts")
		if err != nil {
			log.Warn().Err(err).Msg("hot reload disabled")
			watcher = nil
		}
	}

	return NewGame(gameDeps{
		session:     session,
		bindings:    bindings,
		anim:        anim,
		feedback:    feedback,
		camera:      camera,
		scenery:     scenery,
		watcher:     watcher,
		catalogName: CLI.Catalog,
		debug:       CLI.Debug,
		log:         log.Logger.With().Str("component", "game").Logger(),
	}), nil
}

func levelIndex(c *levels.Catalog, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, n := range c.Names() {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("level %q not in catalog %v", name, c.Names())
}
