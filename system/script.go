package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
	"github.com/milk9111/dunk/prefabs"
	"github.com/rs/zerolog"
)

// ScriptRunner runs a level's on_enter script. Scripts see level_name and
// level_index and may call spawn(name, x, y, z) and log(msg).
type ScriptRunner struct {
	Scenery component.Scenery
	Logger  zerolog.Logger
	// Load overrides how scripts are read; nil uses prefabs.LoadScript.
	Load func(name string) ([]byte, error)
}

// ScriptReport counts what a script did.
type ScriptReport struct {
	Spawned int
	Failed  int
}

func (r *ScriptRunner) Run(ctx context.Context, lvl levels.LevelConfig, index int) (ScriptReport, error) {
	var report ScriptReport
	name := strings.TrimSpace(lvl.OnEnter)
	if r == nil || name == "" {
		return report, nil
	}

	load := prefabs.LoadScript
	if r.Load != nil {
		load = r.Load
	}
	src, err := load(name)
	if err != nil {
		return report, fmt.Errorf("system: script %s: %w", name, err)
	}

	logger := r.Logger.With().Str("script", name).Logger()
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	_ = script.Add("level_name", lvl.Name)
	_ = script.Add("level_index", index)
	_ = script.Add("spawn", &tengo.UserFunction{Name: "spawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		obj, ok := tengo.ToString(args[0])
		if !ok || strings.TrimSpace(obj) == "" {
			return nil, tengo.ErrInvalidArgumentType{Name: "name", Expected: "string", Found: args[0].TypeName()}
		}
		var at mgl64.Vec3
		for i := 0; i < 3; i++ {
			v, ok := tengo.ToFloat64(args[i+1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "xyz"[i : i+1], Expected: "float", Found: args[i+1].TypeName()}
			}
			at[i] = v
		}
		if r.Scenery == nil {
			return tengo.FalseValue, nil
		}
		if err := r.Scenery.Spawn(obj, at); err != nil {
			report.Failed++
			logger.Warn().Err(err).Str("object", obj).Msg("spawn failed")
			return tengo.FalseValue, nil
		}
		report.Spawned++
		return tengo.TrueValue, nil
	}})
	_ = script.Add("log", &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			s, _ := tengo.ToString(a)
			parts = append(parts, s)
		}
		logger.Info().Msg(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}})

	if _, err := script.RunContext(ctx); err != nil {
		return report, fmt.Errorf("system: script %s: %w", name, err)
	}
	return report, nil
}
