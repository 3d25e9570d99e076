package mvarray

import (
	"math"
	"testing"
)

func TestIdxRowMajor(t *testing.T) {
	a := New("test", []float64{0, 1, 2}, []float64{0, 1})
	a.Set(2, 1, 7)
	if a.Data[5] != 7 {
		t.Fatalf("expected element (2,1) at flat index 5, got data %v", a.Data)
	}
	if a.At(2, 1) != 7 {
		t.Fatalf("At(2,1) = %v, want 7", a.At(2, 1))
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := New("orig", []float64{0, 1}, []float64{0})
	a.Set(0, 0, 1)
	b := a.Clone("copy")
	b.Set(0, 0, 2)
	if a.At(0, 0) != 1 {
		t.Fatalf("clone mutated the original: %v", a.At(0, 0))
	}
	if b.Name != "copy" {
		t.Fatalf("clone name = %q, want copy", b.Name)
	}
}

func TestMaskWhere(t *testing.T) {
	a := New("rad", []float64{0, 1}, []float64{0})
	a.Data[0] = -1
	a.Data[1] = 3
	a.MaskWhere(func(v float32) bool { return v > 0 })
	if !math.IsNaN(float64(a.Data[0])) {
		t.Fatalf("expected NaN for non-positive value, got %v", a.Data[0])
	}
	if a.Data[1] != 3 {
		t.Fatalf("positive value must pass through, got %v", a.Data[1])
	}
}

func TestTimeGridRow(t *testing.T) {
	g := &TimeGrid{
		Data: []float64{1, 2, 3, 4},
		X:    []float64{0, 1},
		Y:    []float64{0, 1},
	}
	row := g.Row(1)
	if row[0] != 3 || row[1] != 4 {
		t.Fatalf("Row(1) = %v, want [3 4]", row)
	}
}
