package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"neuroviz/internal/frameclock"
	"neuroviz/internal/logging"
	"neuroviz/internal/storage"
)

type settings struct {
	Store           string
	DBPath          string
	Width           int
	Height          int
	Seed            int64
	Input1          string
	Input2          string
	FrameIntervalMS int
	Addr            string
	LogLevel        string
	Topology        string
	Every           int
	Scale           float64
	Out             string
	Limit           int
}

func defaultSettings() settings {
	return settings{
		Store:           storage.DefaultStoreKind(),
		DBPath:          "neuroviz.db",
		Width:           800,
		Height:          600,
		Input1:          "1",
		Input2:          "1",
		FrameIntervalMS: int(frameclock.DefaultInterval.Milliseconds()),
		Addr:            "127.0.0.1:8080",
		LogLevel:        "info",
		Every:           4,
		Limit:           20,
	}
}

// parseSettings registers the shared flags, then layers defaults, the
// optional config file and explicitly set flags, in that order.
func parseSettings(fs *flag.FlagSet, args []string) (settings, error) {
	d := defaultSettings()
	configPath := fs.String("config", "", "optional JSON config path")
	storeKind := fs.String("store", d.Store, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", d.DBPath, "sqlite database path")
	width := fs.Int("width", d.Width, "canvas width in pixels")
	height := fs.Int("height", d.Height, "canvas height in pixels")
	seed := fs.Int64("seed", d.Seed, "weight seed; 0 draws fresh weights")
	input1 := fs.String("input1", d.Input1, "first input value")
	input2 := fs.String("input2", d.Input2, "second input value")
	frameInterval := fs.Int("frame-interval-ms", d.FrameIntervalMS, "tick interval in milliseconds")
	addr := fs.String("addr", d.Addr, "viewer listen address")
	logLevel := fs.String("log-level", d.LogLevel, "log level: error|warn|info|debug")
	topologyName := fs.String("topology", d.Topology, "topology: one-stage|two-stage|three-stage")
	every := fs.Int("every", d.Every, "capture one frame per N ticks")
	scale := fs.Float64("scale", d.Scale, "capture scale factor in (0,1)")
	out := fs.String("out", d.Out, "capture output path")
	limit := fs.Int("limit", d.Limit, "max runs to list")
	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}

	s := d
	if *configPath != "" {
		loaded, err := loadSettingsFromConfig(*configPath, s)
		if err != nil {
			return settings{}, fmt.Errorf("load config %s: %w", *configPath, err)
		}
		s = loaded
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	overrideFromFlags(&s, setFlags, map[string]any{
		"store":             *storeKind,
		"db-path":           *dbPath,
		"width":             *width,
		"height":            *height,
		"seed":              *seed,
		"input1":            *input1,
		"input2":            *input2,
		"frame-interval-ms": *frameInterval,
		"addr":              *addr,
		"log-level":         *logLevel,
		"topology":          *topologyName,
		"every":             *every,
		"scale":             *scale,
		"out":               *out,
		"limit":             *limit,
	})

	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return settings{}, err
	}
	logging.Get().SetLevel(level)
	if s.FrameIntervalMS <= 0 {
		return settings{}, fmt.Errorf("frame interval must be positive: %d", s.FrameIntervalMS)
	}
	return s, nil
}

func loadSettingsFromConfig(path string, base settings) (settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return settings{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return settings{}, err
	}

	s := base
	if v, ok := asString(raw["store"]); ok {
		s.Store = v
	}
	if v, ok := asString(raw["db_path"]); ok {
		s.DBPath = v
	}
	if v, ok := asInt(raw["width"]); ok {
		s.Width = v
	}
	if v, ok := asInt(raw["height"]); ok {
		s.Height = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		s.Seed = v
	}
	if v, ok := asInput(raw["input1"]); ok {
		s.Input1 = v
	}
	if v, ok := asInput(raw["input2"]); ok {
		s.Input2 = v
	}
	if v, ok := asInt(raw["frame_interval_ms"]); ok {
		s.FrameIntervalMS = v
	}
	if v, ok := asString(raw["addr"]); ok {
		s.Addr = v
	}
	if v, ok := asString(raw["log_level"]); ok {
		s.LogLevel = v
	}
	if v, ok := asString(raw["topology"]); ok {
		s.Topology = v
	}
	if v, ok := asInt(raw["every"]); ok {
		s.Every = v
	}
	if v, ok := asFloat64(raw["scale"]); ok {
		s.Scale = v
	}
	if v, ok := asString(raw["out"]); ok {
		s.Out = v
	}
	if v, ok := asInt(raw["limit"]); ok {
		s.Limit = v
	}
	return s, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// asInput accepts an input as JSON text or number.
func asInput(v any) (string, bool) {
	if s, ok := asString(v); ok {
		return s, true
	}
	if f, ok := asFloat64(v); ok {
		return fmt.Sprint(f), true
	}
	return "", false
}

func overrideFromFlags(s *settings, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "store":
			s.Store = v.(string)
		case "db-path":
			s.DBPath = v.(string)
		case "width":
			s.Width = v.(int)
		case "height":
			s.Height = v.(int)
		case "seed":
			s.Seed = v.(int64)
		case "input1":
			s.Input1 = v.(string)
		case "input2":
			s.Input2 = v.(string)
		case "frame-interval-ms":
			s.FrameIntervalMS = v.(int)
		case "addr":
			s.Addr = v.(string)
		case "log-level":
			s.LogLevel = v.(string)
		case "topology":
			s.Topology = v.(string)
		case "every":
			s.Every = v.(int)
		case "scale":
			s.Scale = v.(float64)
		case "out":
			s.Out = v.(string)
		case "limit":
			s.Limit = v.(int)
		}
	}
}
