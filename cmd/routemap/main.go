// Command routemap draws orienteering courses onto their map.
//
// Usage:
//
//	routemap -url 'https://www.livelox.com/Viewer/...?classId=862192'
//	routemap -blob class.json -map kart.png -out courses.png
//
// Configuration is read from routemap.yaml (or -config), a .env file and
// ROUTEMAP_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gogpu/routemap"
	"github.com/gogpu/routemap/internal/config"
	"github.com/gogpu/routemap/internal/imageio"
	"github.com/gogpu/routemap/livelox"
)

type options struct {
	url        string
	blob       string
	mapPath    string
	out        string
	format     string
	res        float64
	parallel   int
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("routemap failed", "err", err)
		}
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("routemap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.url, "url", "", "Livelox viewer URL containing classId")
	fs.StringVar(&o.blob, "blob", "", "class blob JSON file (with -map)")
	fs.StringVar(&o.mapPath, "map", "", "map image file (with -blob)")
	fs.StringVar(&o.out, "out", "", "output file (default derived from map name and corners)")
	fs.StringVar(&o.format, "format", "", "output format: png, jpeg or webp (default from config)")
	fs.Float64Var(&o.res, "res", 0, "map resolution divisor (default from the class blob)")
	fs.IntVar(&o.parallel, "parallel", -1, "routes drawn concurrently, 0 = all CPUs (default from config)")
	fs.StringVar(&o.configPath, "config", "", "config file (default ./routemap.yaml if present)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case o.url != "" && (o.blob != "" || o.mapPath != ""):
		return o, errors.New("-url cannot be combined with -blob or -map")
	case o.url == "" && (o.blob == "" || o.mapPath == ""):
		return o, errors.New("either -url or both -blob and -map are required")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.parallel >= 0 {
		cfg.Render.Parallel = o.parallel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Log.Logger(stderr)
	slog.SetDefault(logger)
	routemap.SetLogger(logger)

	blob, base, err := loadInputs(ctx, o, cfg)
	if err != nil {
		return err
	}

	q, err := blob.Quadrilateral()
	if err != nil {
		return err
	}
	routes := blob.Routes()
	if len(routes) == 0 {
		return fmt.Errorf("%w: class has no courses with controls", routemap.ErrInvalidRoute)
	}

	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}
	r, err := routemap.NewRenderer(rc, cfg.RendererOptions()...)
	if err != nil {
		return err
	}

	out, err := r.RenderMap(base, q, routes, resolution(o, cfg, blob))
	if err != nil {
		return err
	}

	format := cfg.OutputFormat()
	path := o.out
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, imageio.FileName(blob.Map.Name, q, format))
	}
	if err := imageio.Save(path, out, format, cfg.Output.JPEGQuality); err != nil {
		return err
	}
	logger.Info("map written",
		slog.String("path", path),
		slog.Int("routes", len(routes)),
		slog.Int("width", out.Bounds().Dx()),
		slog.Int("height", out.Bounds().Dy()))
	return nil
}

// loadInputs fetches the class from Livelox or reads it from disk.
func loadInputs(ctx context.Context, o options, cfg *config.Config) (*livelox.ClassBlob, image.Image, error) {
	if o.url == "" {
		f, err := os.Open(o.blob)
		if err != nil {
			return nil, nil, err
		}
		defer func() { _ = f.Close() }()
		blob, err := livelox.ReadClassBlob(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", o.blob, err)
		}
		base, err := imageio.Load(o.mapPath)
		if err != nil {
			return nil, nil, err
		}
		return blob, base, nil
	}

	classID, err := livelox.ClassIDFromURL(o.url)
	if err != nil {
		return nil, nil, err
	}
	client := livelox.NewClient(
		livelox.WithBaseURL(cfg.Livelox.BaseURL),
		livelox.WithTimeout(cfg.Livelox.Timeout),
	)
	info, err := client.ClassInfo(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("class found", slog.String("class", classID), slog.String("event", info.EventName()))

	blob, err := client.ClassBlob(ctx, info.BlobURL())
	if err != nil {
		return nil, nil, err
	}
	base, err := client.FetchMap(ctx, blob.Map.URL)
	if err != nil {
		return nil, nil, err
	}
	return blob, base, nil
}

// resolution picks the map resolution: the -res flag, then the class
// blob, then the config file.
func resolution(o options, cfg *config.Config, blob *livelox.ClassBlob) float64 {
	switch {
	case o.res > 0:
		return o.res
	case blob.Map.Resolution > 0:
		return blob.Map.Resolution
	case cfg.Render.Resolution > 0:
		return cfg.Render.Resolution
	}
	return 1
}
