package state

import (
	"errors"
	"testing"

	"github.com/samcharles93/cadenza/internal/tensor"
)

func TestGetMissingKey(t *testing.T) {
	t.Parallel()
	s := New()
	_, err := s.Get("lr")
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	var mk *MissingKeyError
	if !errors.As(err, &mk) || mk.Key != "lr" {
		t.Fatalf("expected MissingKeyError for lr, got %v", err)
	}
}

func TestTypedAccessors(t *testing.T) {
	t.Parallel()
	s := State{
		"x":     TensorValue(tensor.New(2)),
		"scale": ScalarValue(0.5),
	}
	if _, err := s.Tensor("x"); err != nil {
		t.Fatalf("Tensor(x): %v", err)
	}
	if f, err := s.Scalar("scale"); err != nil || f != 0.5 {
		t.Fatalf("Scalar(scale): got %v, %v", f, err)
	}

	_, err := s.Scalar("x")
	if !errors.Is(err, ErrKind) {
		t.Fatalf("expected ErrKind, got %v", err)
	}
	var ke *KindError
	if !errors.As(err, &ke) || ke.Key != "x" || ke.Want != KindScalar || ke.Got != KindTensor {
		t.Fatalf("unexpected kind error: %+v", ke)
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	t.Parallel()
	existing := State{"a": ScalarValue(1), "b": ScalarValue(2)}
	partial := State{"b": ScalarValue(3), "c": ScalarValue(4)}

	merged := Merge(existing, partial)

	if len(existing) != 2 || len(partial) != 2 {
		t.Fatalf("inputs were modified: %v %v", existing, partial)
	}
	if v, _ := existing.Scalar("b"); v != 2 {
		t.Fatalf("existing b overwritten: %v", v)
	}
	want := map[string]float64{"a": 1, "b": 3, "c": 4}
	if len(merged) != len(want) {
		t.Fatalf("merged keys: got %v", merged.Keys())
	}
	for k, w := range want {
		if got, err := merged.Scalar(k); err != nil || got != w {
			t.Fatalf("merged[%s]: got %v, %v want %v", k, got, err, w)
		}
	}
}

func TestKeysSorted(t *testing.T) {
	t.Parallel()
	s := State{"b": ScalarValue(0), "a": ScalarValue(0), "c": ScalarValue(0)}
	got := s.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys: got %v want %v", got, want)
		}
	}
}

func TestValueKinds(t *testing.T) {
	t.Parallel()
	seq := SequenceValue(ScalarValue(1), TensorValue(tensor.New(1)))
	items, err := seq.AsSequence()
	if err != nil || len(items) != 2 {
		t.Fatalf("AsSequence: %v len=%d", err, len(items))
	}
	if seq.String() != "sequence(2)" {
		t.Fatalf("String: %q", seq.String())
	}
	var zero Value
	if zero.IsValid() {
		t.Fatalf("zero value should be invalid")
	}
	if _, err := zero.AsTensor(); !errors.Is(err, ErrKind) {
		t.Fatalf("zero AsTensor: %v", err)
	}
}
