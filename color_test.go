package routemap

import (
	"image/color"
	"testing"
)

func TestRGBA_Color(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want color.NRGBA
	}{
		{"opaque black", Black, color.NRGBA{0, 0, 0, 255}},
		{"opaque white", White, color.NRGBA{255, 255, 255, 255}},
		{"purple", Purple, color.NRGBA{128, 0, 128, 255}},
		{"transparent", Transparent, color.NRGBA{0, 0, 0, 0}},
		{"50% alpha red", RGBA{1, 0, 0, 0.5}, color.NRGBA{255, 0, 0, 128}},
		{"clamped", RGBA{2, -1, 0.5, 1}, color.NRGBA{255, 0, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Color(); got != tt.want {
				t.Errorf("Color() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 128, B: 128, A: 255})
	if got != Purple {
		t.Errorf("FromColor(#800080) = %+v, want %+v", got, Purple)
	}
	if FromColor(color.Transparent).A != 0 {
		t.Error("transparent should keep zero alpha")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#800080", color.NRGBA{128, 0, 128, 255}, false},
		{"800080", color.NRGBA{128, 0, 128, 255}, false},
		{"#f00", color.NRGBA{255, 0, 0, 255}, false},
		{"#F00A", color.NRGBA{255, 0, 0, 170}, false},
		{"#3498dbcc", color.NRGBA{0x34, 0x98, 0xdb, 0xcc}, false},
		{" #ffffff ", color.NRGBA{255, 255, 255, 255}, false},
		{"", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#gg0000", color.NRGBA{}, true},
		{"purple", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHex(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q): %v", tt.in, err)
			}
			if got := c.Color(); got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGBA_Hex(t *testing.T) {
	tests := []struct {
		c    RGBA
		want string
	}{
		{Purple, "#800080"},
		{White, "#ffffff"},
		{RGBA{1, 0, 0, 0.5}, "#ff000080"},
	}
	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.want {
			t.Errorf("%+v.Hex() = %q, want %q", tt.c, got, tt.want)
		}
		back, err := ParseHex(tt.want)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tt.want, err)
		}
		if back.Hex() != tt.want {
			t.Errorf("Hex round trip %q -> %q", tt.want, back.Hex())
		}
	}
}
