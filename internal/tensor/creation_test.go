package tensor

import (
	"math"
	"math/rand"
	"testing"
)

func TestFull(t *testing.T) {
	x := Full(Shape{2, 3}, 2.5)
	for i, v := range x.AsFloat64() {
		if v != 2.5 {
			t.Errorf("element %d = %v, want 2.5", i, v)
		}
	}
	if x.DType() != Float64 {
		t.Errorf("DType = %s, want float64", x.DType())
	}
}

func TestZerosPanicsOnInvalidShape(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Zeros should panic on an invalid shape")
		}
	}()
	Zeros(Shape{0, 2})
}

func TestFromFloat64(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	x, err := FromFloat64(src, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromFloat64 failed: %v", err)
	}
	if x.At(1, 0) != 4 {
		t.Errorf("At(1,0) = %v, want 4", x.At(1, 0))
	}

	src[0] = 100
	if x.At(0, 0) != 1 {
		t.Error("FromFloat64 should copy its input")
	}

	if _, err := FromFloat64(src, Shape{4, 2}); err == nil {
		t.Error("FromFloat64 should reject a length mismatch")
	}
}

func TestRandUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := RandUniform(Shape{50, 20}, -2, 3, rng)
	for _, v := range x.AsFloat64() {
		if v < -2 || v >= 3 {
			t.Fatalf("value %v outside [-2, 3)", v)
		}
	}
}

func TestRandn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := Randn(Shape{100, 50}, rng)
	data := x.AsFloat64()

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	variance := 0.0
	for _, v := range data {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(data)))

	if math.Abs(mean) > 0.1 {
		t.Errorf("Randn mean = %v, expected ~0", mean)
	}
	if math.Abs(std-1) > 0.1 {
		t.Errorf("Randn std = %v, expected ~1", std)
	}
}

func TestToFloat64(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Float32)
	copy(raw.AsFloat32(), []float32{1, 0.5, -2})

	wide := ToFloat64(raw)
	want := []float64{1, 0.5, -2}
	for i, v := range wide.AsFloat64() {
		if v != want[i] {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}

	f64 := Ones(Shape{2})
	view := ToFloat64(f64)
	view.AsFloat64()[0] = 7
	if f64.At(0) != 7 {
		t.Error("ToFloat64 of a float64 tensor should share the buffer")
	}
}
