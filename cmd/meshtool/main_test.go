package main

import (
	"testing"

	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/pkg/math"
)

func TestParseScale(t *testing.T) {
	tests := []struct {
		in      string
		want    math.Vec3
		wantErr bool
	}{
		{"2", math.Splat(2), false},
		{"1,2,3", math.Vec3{X: 1, Y: 2, Z: 3}, false},
		{"1,2", math.Vec3{}, true},
		{"a", math.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseScale(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScale(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseScale(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRotation(t *testing.T) {
	axis, deg, err := parseRotation("0, 1, 0, 90")
	if err != nil {
		t.Fatalf("parseRotation: %v", err)
	}
	if axis != (math.Vec3{Y: 1}) || deg != 90 {
		t.Errorf("got axis %v deg %v", axis, deg)
	}

	if _, _, err := parseRotation("0,0,0,90"); err == nil {
		t.Error("expected error for zero axis")
	}
	if _, _, err := parseRotation("0,1,0"); err == nil {
		t.Error("expected error for missing angle")
	}
}

func TestParseOrdinals(t *testing.T) {
	got, err := parseOrdinals("3, 1,2")
	if err != nil {
		t.Fatalf("parseOrdinals: %v", err)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("got %v", got)
	}

	if got, err := parseOrdinals(""); err != nil || got != nil {
		t.Errorf("empty input: got %v, %v", got, err)
	}
	if _, err := parseOrdinals("1,x"); err == nil {
		t.Error("expected error for non-integer")
	}
}

func TestColorFlags(t *testing.T) {
	var c colorFlags
	if err := c.Set("2=1,0.5,0"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(c) != 1 || c[0].ordinal != 2 || c[0].rgb != [3]float32{1, 0.5, 0} {
		t.Errorf("got %+v", c)
	}
	if c.String() != "2=1,0.5,0" {
		t.Errorf("String() = %q", c.String())
	}

	for _, bad := range []string{"2", "x=1,1,1", "1=1,1"} {
		if err := c.Set(bad); err == nil {
			t.Errorf("Set(%q): expected error", bad)
		}
	}
}

func TestSourceBounds(t *testing.T) {
	n := model.Normalization{Center: math.Vec3{X: 1, Y: 2, Z: 3}, Scale: 0.5}
	box := model.BoundingBox{Min: math.Splat(-0.5), Max: math.Splat(0.5), Valid: true}

	got := sourceBounds(n, box)
	if got.Min != (math.Vec3{X: 0, Y: 1, Z: 2}) || got.Max != (math.Vec3{X: 2, Y: 3, Z: 4}) {
		t.Errorf("sourceBounds = %v - %v", got.Min, got.Max)
	}

	if empty := sourceBounds(n, model.BoundingBox{}); empty.Valid {
		t.Error("an empty box should stay empty")
	}
}
