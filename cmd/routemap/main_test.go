package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/routemap/internal/imageio"
)

const testBlob = `{
	"map": {
		"url": "unused",
		"name": "Testkart",
		"resolution": 2,
		"imageFormat": "PNG",
		"boundingQuadrilateral": {"vertices": [
			{"latitude": 59.0, "longitude": 10.0},
			{"latitude": 59.0, "longitude": 11.0},
			{"latitude": 60.0, "longitude": 11.0},
			{"latitude": 60.0, "longitude": 10.0}
		]}
	},
	"courses": [
		{"name": "A", "controls": [
			{"control": {"position": {"latitude": 59.2, "longitude": 10.2}}},
			{"control": {"position": {"latitude": 59.5, "longitude": 10.5}}},
			{"control": {"position": {"latitude": 59.8, "longitude": 10.8}}}
		]}
	]
}`

func writeInputs(t *testing.T) (dir, blobPath, mapPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)

	blobPath = filepath.Join(dir, "class.json")
	if err := os.WriteFile(blobPath, []byte(testBlob), 0o600); err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	mapPath = filepath.Join(dir, "kart.png")
	f, err := os.Create(mapPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return dir, blobPath, mapPath
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"url", []string{"-url", "https://www.livelox.com/Viewer?classId=1"}, false},
		{"files", []string{"-blob", "a.json", "-map", "a.png"}, false},
		{"nothing", nil, true},
		{"blob only", []string{"-blob", "a.json"}, true},
		{"url and files", []string{"-url", "x", "-blob", "a.json", "-map", "a.png"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := parseFlags(tt.args, &stderr)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseFlags_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "-blob") {
		t.Errorf("usage does not list -blob: %q", stderr.String())
	}
}

func TestRun_FromFiles(t *testing.T) {
	dir, blobPath, mapPath := writeInputs(t)

	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-blob", blobPath, "-map", mapPath, "-parallel", "2"}, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	// Resolution 2 from the blob halves the map.
	name := "Testkart_60_10_60_11_59_11_59_10_.png"
	img, err := imageio.Load(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("output size = %v, want 200x150", b)
	}

	// The overlay must have touched the map somewhere.
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	changed := false
	for y := 0; y < 150 && !changed; y++ {
		for x := 0; x < 200; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != white {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("output is plain white, expected drawn routes")
	}
	if !strings.Contains(stderr.String(), "map written") {
		t.Errorf("missing completion log: %q", stderr.String())
	}
}

func TestRun_ExplicitOutAndRes(t *testing.T) {
	dir, blobPath, mapPath := writeInputs(t)
	out := filepath.Join(dir, "out.jpg")

	var stderr bytes.Buffer
	args := []string{"-blob", blobPath, "-map", mapPath, "-out", out, "-format", "jpeg", "-res", "1"}
	if err := run(context.Background(), args, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := imageio.Load(out)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("output size = %v, want 400x300", b)
	}
}

func TestRun_WebPOutput(t *testing.T) {
	dir, blobPath, mapPath := writeInputs(t)

	var stderr bytes.Buffer
	args := []string{"-blob", blobPath, "-map", mapPath, "-format", "webp"}
	if err := run(context.Background(), args, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	f, err := os.Open(filepath.Join(dir, "Testkart_60_10_60_11_59_11_59_10_.webp"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, format, err := imageio.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "webp" {
		t.Errorf("format = %q, want webp", format)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("output size = %v, want 200x150", b)
	}
}

func TestRun_Errors(t *testing.T) {
	dir, blobPath, mapPath := writeInputs(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing blob", []string{"-blob", filepath.Join(dir, "none.json"), "-map", mapPath}},
		{"missing map", []string{"-blob", blobPath, "-map", filepath.Join(dir, "none.png")}},
		{"bad format", []string{"-blob", blobPath, "-map", mapPath, "-format", "gif"}},
		{"bad url", []string{"-url", "https://www.livelox.com/Viewer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if err := run(context.Background(), tt.args, &stderr); err == nil {
				t.Error("run should fail")
			}
		})
	}
}
