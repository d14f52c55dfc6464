package mapfile

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mapfile/go/document"
)

type position struct {
	X     int
	Z     int
	World string
}

func (p position) ToMap() map[string]any {
	return map[string]any{
		"x":     p.X,
		"z":     p.Z,
		"world": p.World,
	}
}

func TestLinesScalarEntries(t *testing.T) {
	doc := document.New()
	doc.Set("name", "Avery")
	doc.Set("scores", []any{10, 20, 30})

	lines, err := Lines(doc)
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}

	want := []string{
		"name=Avery",
		"scores=[",
		"0=10",
		"1=20",
		"2=30",
		"]",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesSortedKeys(t *testing.T) {
	// The same logical document must serialize identically regardless of
	// insertion order.
	first := document.New()
	first.Set("zebra", "1")
	first.Set("alpha", "2")
	first.Set("mid", "3")

	second := document.New()
	second.Set("mid", "3")
	second.Set("alpha", "2")
	second.Set("zebra", "1")

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("insertion order changed output:\n%q\n%q", a, b)
	}
	if string(a) != "alpha=2\nmid=3\nzebra=1\n" {
		t.Errorf("unexpected canonical form: %q", a)
	}
}

func TestLinesNestedMaps(t *testing.T) {
	lines, err := Lines(map[string]any{
		"outer": map[string]any{
			"inner": map[string]any{"deep": "v"},
			"leaf":  "x",
		},
	})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{
		"outer=[",
		"inner=[",
		"deep=v",
		"]",
		"leaf=x",
		"]",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesEscapesKeysAndValues(t *testing.T) {
	lines, err := Lines(map[string]any{"a=b": "c=d\ne"})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{"a§-b=c§-d§ne"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesStorable(t *testing.T) {
	lines, err := Lines(map[string]any{
		"home": position{X: 3, Z: -7, World: "overworld"},
	})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{
		"home=[",
		"world=overworld",
		"x=3",
		"z=-7",
		"]",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesSetsAreSorted(t *testing.T) {
	set := document.NewSet("cherry", "apple", "banana")
	lines, err := Lines(map[string]any{"fruit": set})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{
		"fruit=[",
		"0=apple",
		"1=banana",
		"2=cherry",
		"]",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesTypedMapsAndSlices(t *testing.T) {
	lines, err := Lines(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"a=1", "b=2"}) {
		t.Errorf("typed map: Lines() = %q", lines)
	}

	lines, err = Lines(map[string]any{"tags": []string{"x", "y"}})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{"tags=[", "0=x", "1=y", "]"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("typed slice: Lines() = %q, want %q", lines, want)
	}
}

func TestLinesFloatPrecision(t *testing.T) {
	// float32 values must format at their own precision, not as the
	// widened float64 (which would turn 0.1 into 0.10000000149011612).
	lines, err := Lines(map[string]any{"narrow": float32(0.1), "wide": 0.1})
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	want := []string{"narrow=0.1", "wide=0.1"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestLinesUnsupportedType(t *testing.T) {
	_, err := Lines(map[string]any{"bad": make(chan int)})
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("Lines() error = %v, want *UnsupportedTypeError", err)
	}
	if !strings.Contains(ute.Error(), "chan int") {
		t.Errorf("error should name the type: %v", ute)
	}

	if _, err := Lines("not a map"); err == nil {
		t.Error("Lines() on a scalar should fail")
	}
}

func TestLinesFromSeq(t *testing.T) {
	lines, err := LinesFromSeq([]any{"a", "b"})
	if err != nil {
		t.Fatalf("LinesFromSeq() error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"0=a", "1=b"}) {
		t.Errorf("LinesFromSeq() = %q", lines)
	}
}

func TestMarshalTrailingNewline(t *testing.T) {
	data, err := Marshal(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != "k=v\n" {
		t.Errorf("Marshal() = %q", data)
	}
}
