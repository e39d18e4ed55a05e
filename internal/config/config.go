// Package config loads the routemap command configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/image/draw"

	"github.com/gogpu/routemap"
	"github.com/gogpu/routemap/internal/imageio"
)

// EnvPrefix prefixes every environment variable, e.g. ROUTEMAP_RENDER_ALPHA.
const EnvPrefix = "ROUTEMAP"

// Config holds all command configuration.
type Config struct {
	Render  RenderConfig  `mapstructure:"render"`
	Livelox LiveloxConfig `mapstructure:"livelox"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

// RenderConfig mirrors routemap.RenderConfig plus renderer options.
type RenderConfig struct {
	StrokeWidth  int     `mapstructure:"stroke_width"`
	MarkerRadius int     `mapstructure:"marker_radius"`
	FinishRadius int     `mapstructure:"finish_radius"`
	LabelOffset  float64 `mapstructure:"label_offset"`
	Color        string  `mapstructure:"color"`
	Alpha        float64 `mapstructure:"alpha"`
	FontSize     float64 `mapstructure:"font_size"`
	FontPath     string  `mapstructure:"font_path"`
	Parallel     int     `mapstructure:"parallel"`
	Interpolator string  `mapstructure:"interpolator"`
	Resolution   float64 `mapstructure:"resolution"`
}

// LiveloxConfig selects the Livelox host and request timeout.
type LiveloxConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls how and where rendered maps are written.
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	Dir         string `mapstructure:"dir"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var interpolators = map[string]draw.Interpolator{
	"nearest":        draw.NearestNeighbor,
	"approxbilinear": draw.ApproxBiLinear,
	"bilinear":       draw.BiLinear,
	"catmullrom":     draw.CatmullRom,
}

// Load reads configuration from defaults, the config file, a .env file
// and ROUTEMAP_* environment variables, later sources winning.
//
// An empty path looks for routemap.yaml in the working directory and is
// fine to miss; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("routemap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// ROUTEMAP_RENDER_ALPHA → render.alpha
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := routemap.DefaultRenderConfig()
	v.SetDefault("render.stroke_width", d.StrokeWidth)
	v.SetDefault("render.marker_radius", d.MarkerRadius)
	v.SetDefault("render.finish_radius", d.FinishRadius)
	v.SetDefault("render.label_offset", d.LabelOffset)
	v.SetDefault("render.color", d.Color.Hex())
	v.SetDefault("render.alpha", d.Alpha)
	v.SetDefault("render.font_size", d.FontSize)
	v.SetDefault("render.font_path", "")
	v.SetDefault("render.parallel", 1)
	v.SetDefault("render.interpolator", "catmullrom")
	v.SetDefault("render.resolution", 0)
	v.SetDefault("livelox.base_url", "https://www.livelox.com")
	v.SetDefault("livelox.timeout", 30*time.Second)
	v.SetDefault("output.format", "png")
	v.SetDefault("output.jpeg_quality", imageio.DefaultJPEGQuality)
	v.SetDefault("output.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks that the configuration is usable. Drawing parameters are
// checked again by routemap.RenderConfig.Validate.
func (c *Config) Validate() error {
	var errs []string

	if _, err := routemap.ParseHex(c.Render.Color); err != nil {
		errs = append(errs, fmt.Sprintf("render.color: %v", err))
	}
	if _, ok := interpolators[strings.ToLower(c.Render.Interpolator)]; !ok {
		errs = append(errs, fmt.Sprintf("render.interpolator must be one of nearest, approxbilinear, bilinear, catmullrom, got %q", c.Render.Interpolator))
	}
	if c.Render.Parallel < 0 {
		errs = append(errs, fmt.Sprintf("render.parallel must not be negative, got %d", c.Render.Parallel))
	}
	if c.Render.Resolution < 0 {
		errs = append(errs, fmt.Sprintf("render.resolution must not be negative, got %g", c.Render.Resolution))
	}
	if c.Livelox.BaseURL == "" {
		errs = append(errs, "livelox.base_url is required")
	}
	if c.Livelox.Timeout <= 0 {
		errs = append(errs, "livelox.timeout must be positive")
	}
	if _, err := imageio.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Sprintf("output.format: %v", err))
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("output.jpeg_quality must be 1-100, got %d", c.Output.JPEGQuality))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RenderConfig builds the drawing configuration, loading the font file if
// one is set.
func (c *Config) RenderConfig() (routemap.RenderConfig, error) {
	col, err := routemap.ParseHex(c.Render.Color)
	if err != nil {
		return routemap.RenderConfig{}, err
	}
	rc := routemap.RenderConfig{
		StrokeWidth:  c.Render.StrokeWidth,
		MarkerRadius: c.Render.MarkerRadius,
		FinishRadius: c.Render.FinishRadius,
		LabelOffset:  c.Render.LabelOffset,
		Color:        col,
		Alpha:        c.Render.Alpha,
		FontSize:     c.Render.FontSize,
	}
	if c.Render.FontPath != "" {
		data, err := os.ReadFile(c.Render.FontPath)
		if err != nil {
			return routemap.RenderConfig{}, fmt.Errorf("render.font_path: %w", err)
		}
		if rc.Font, err = routemap.NewFontSource(data); err != nil {
			return routemap.RenderConfig{}, fmt.Errorf("render.font_path %s: %w", c.Render.FontPath, err)
		}
	}
	return rc, rc.Validate()
}

// RendererOptions returns the renderer options selected by the configuration.
func (c *Config) RendererOptions() []routemap.RendererOption {
	return []routemap.RendererOption{
		routemap.WithParallelism(c.Render.Parallel),
		routemap.WithInterpolator(interpolators[strings.ToLower(c.Render.Interpolator)]),
	}
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() imageio.Format {
	f, err := imageio.ParseFormat(c.Output.Format)
	if err != nil {
		return imageio.PNG
	}
	return f
}

// Logger builds a logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	lvl, err := parseLevel(l.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.ToLower(l.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
}
