// Command nebula opens a window with an interactive particle field.
//
// Move the pointer to tilt the field; click or tap to spawn an explosion
// that pushes nearby particles away.
//
// Flags override environment variables (NEBULA_*). When -metrics is set,
// Prometheus metrics are served on that address at /metrics. When -tuning
// names a JSON file it is applied at start and reloaded on every save.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/phanxgames/nebula"
	"github.com/phanxgames/nebula/promstats"
)

// GetEnvDefault returns the value of key, or def when unset or empty.
func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

type options struct {
	width, height int
	count         int
	mobile        bool
	userAgent     string
	palette       string
	background    string
	stats         bool
	debug         bool
	lowPower      bool
	seed          uint64
	tuning        string
	metrics       string
	script        string
	screenshots   string
	logLevel      string
	env           string
	intro         time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("nebula", flag.ContinueOnError)
	fs.IntVar(&o.width, "width", envInt("NEBULA_WIDTH", 1280), "window width")
	fs.IntVar(&o.height, "height", envInt("NEBULA_HEIGHT", 720), "window height")
	fs.IntVar(&o.count, "count", envInt("NEBULA_COUNT", 0), "ambient particle count (0 = device default)")
	fs.BoolVar(&o.mobile, "mobile", envBool("NEBULA_MOBILE", false), "force the mobile particle budget")
	fs.StringVar(&o.userAgent, "user-agent", GetEnvDefault("NEBULA_USER_AGENT", ""), "classify the device from a user-agent string")
	fs.StringVar(&o.palette, "palette", GetEnvDefault("NEBULA_PALETTE", ""), "comma-separated hex palette, or hue:N")
	fs.StringVar(&o.background, "background", GetEnvDefault("NEBULA_BACKGROUND", "#0B0B1A"), "background hex color, empty for transparent")
	fs.BoolVar(&o.stats, "stats", envBool("NEBULA_STATS", false), "show the stats overlay")
	fs.BoolVar(&o.debug, "debug", envBool("NEBULA_DEBUG", false), "log per-frame stats")
	fs.BoolVar(&o.lowPower, "low-power", envBool("NEBULA_LOW_POWER", false), "run at a reduced tick rate")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed (0 = random)")
	fs.StringVar(&o.tuning, "tuning", GetEnvDefault("NEBULA_TUNING", ""), "live tuning JSON file")
	fs.StringVar(&o.metrics, "metrics", GetEnvDefault("NEBULA_METRICS_ADDR", ""), "serve Prometheus metrics on this address")
	fs.StringVar(&o.script, "script", "", "JSON test script to drive the scene")
	fs.StringVar(&o.screenshots, "screenshots", GetEnvDefault("NEBULA_SCREENSHOT_DIR", "screenshots"), "screenshot output directory")
	fs.StringVar(&o.logLevel, "log-level", GetEnvDefault("NEBULA_LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.env, "env", GetEnvDefault("NEBULA_ENV", "development"), "environment (development or production)")
	fs.DurationVar(&o.intro, "intro", 1500*time.Millisecond, "camera intro dolly duration, 0 to disable")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "nebula:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := newLogger(LogConfig{Environment: opts.env, LogLevel: opts.logLevel})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	scene := nebula.NewScene(cfg)
	scene.SetLogger(log.Named("scene"))
	scene.ScreenshotDir = opts.screenshots

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		scene.Dispose()
	}()

	if opts.metrics != "" {
		srv, err := serveMetrics(opts.metrics, scene, log)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if opts.tuning != "" {
		if err := nebula.WatchTuning(ctx, opts.tuning, scene.SubmitTuning, log.Named("tuning")); err != nil {
			return err
		}
	}

	if opts.script != "" {
		data, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := nebula.LoadTestScript(data)
		if err != nil {
			return err
		}
		scene.SetTestRunner(runner)
	}

	if opts.intro > 0 {
		cam := scene.Camera()
		z := cam.Position[2]
		cam.Position[2] = z * 3
		cam.MarkDirty()
		cam.DollyTo(z, float32(opts.intro.Seconds()), nil)
	}

	log.Info("Starting nebula",
		zap.Int("particles", cfg.Field.Count),
		zap.String("tier", cfg.Tier.String()))

	return nebula.Run(scene, nebula.RunConfig{
		Title:     "nebula",
		Width:     opts.width,
		Height:    opts.height,
		Resizable: true,
	})
}

func buildConfig(o options) (nebula.Config, error) {
	tier := nebula.HostDeviceTier()
	if o.userAgent != "" {
		tier = nebula.DetectDeviceTier(o.userAgent)
	}
	if o.mobile {
		tier = nebula.TierMobile
	}
	cfg := nebula.DefaultConfig(tier)
	if o.count != 0 {
		cfg.Field.Count = o.count
	}
	cfg.Seed = o.seed
	cfg.Debug = o.debug
	cfg.ShowStats = o.stats
	if o.lowPower {
		cfg.Render.PowerPreference = nebula.PowerLowPower
	}
	if o.palette != "" {
		pal, err := parsePaletteFlag(o.palette)
		if err != nil {
			return cfg, err
		}
		cfg.Field.Palette = pal
	}
	if o.background != "" {
		bg, err := nebula.ParsePalette(o.background)
		if err != nil {
			return cfg, fmt.Errorf("background: %w", err)
		}
		if len(bg) == 1 {
			cfg.Render.BackgroundColor = &bg[0]
		}
	}
	return cfg, nil
}

// parsePaletteFlag accepts a comma-separated hex list or "hue:N" for N
// colors spread evenly around the hue circle.
func parsePaletteFlag(v string) ([]nebula.Color, error) {
	if n, ok := strings.CutPrefix(v, "hue:"); ok {
		count, err := strconv.Atoi(n)
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("palette: bad hue count %q", n)
		}
		return nebula.HuePalette(count, 240, 0.7, 0.95)
	}
	return nebula.ParsePalette(strings.Split(v, ",")...)
}

func serveMetrics(addr string, scene *nebula.Scene, log *zap.Logger) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	sink, err := promstats.New(reg, "nebula")
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	scene.SetStatsSink(sink)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()
	log.Info("Serving metrics", zap.String("addr", addr))
	return srv, nil
}
