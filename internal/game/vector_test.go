package game

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(1, 2)
	b := NewVec2(3, -4)

	sum := a.Add(b)
	if sum.X != 4 || sum.Z != -2 {
		t.Errorf("Add wrong: got (%.1f,%.1f)", sum.X, sum.Z)
	}

	diff := b.Sub(a)
	if diff.X != 2 || diff.Z != -6 {
		t.Errorf("Sub wrong: got (%.1f,%.1f)", diff.X, diff.Z)
	}

	scaled := a.Scale(2)
	if scaled.X != 2 || scaled.Z != 4 {
		t.Errorf("Scale wrong: got (%.1f,%.1f)", scaled.X, scaled.Z)
	}
}

func TestVec2Distance(t *testing.T) {
	a := NewVec2(0, 0)
	b := NewVec2(3, 4)
	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("DistanceTo wrong: got %.6f want 5", d)
	}
	if l := b.Length(); math.Abs(l-5) > 1e-12 {
		t.Errorf("Length wrong: got %.6f want 5", l)
	}
}

func TestVec2IsFinite(t *testing.T) {
	if !NewVec2(1, 2).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if NewVec2(math.NaN(), 0).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if NewVec2(0, math.Inf(1)).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestCentroid(t *testing.T) {
	points := []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	c := Centroid(points)
	if c.X != 1 || c.Z != 1 {
		t.Errorf("Centroid wrong: got (%.1f,%.1f) want (1,1)", c.X, c.Z)
	}

	// Empty cluster falls back to the origin
	z := Centroid(nil)
	if z.X != 0 || z.Z != 0 {
		t.Errorf("Empty centroid should be zero, got (%.1f,%.1f)", z.X, z.Z)
	}
}

func TestClamp(t *testing.T) {
	if v := clamp(5, 0, 1); v != 1 {
		t.Errorf("clamp high wrong: %.1f", v)
	}
	if v := clamp(-5, 0, 1); v != 0 {
		t.Errorf("clamp low wrong: %.1f", v)
	}
	if v := clamp(0.5, 0, 1); v != 0.5 {
		t.Errorf("clamp in-range wrong: %.1f", v)
	}
}
