package state

import (
	"fmt"

	"github.com/samcharles93/cadenza/internal/tensor"
)

// Kind tags the payload held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindTensor
	KindScalar
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindTensor:
		return "tensor"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	default:
		return "invalid"
	}
}

// Value is one entry in a State: a tensor, a scalar, or an ordered sequence
// of values (the tuple result of a sub-model). The zero Value is invalid.
type Value struct {
	kind   Kind
	tensor *tensor.Tensor
	scalar float64
	seq    []Value
}

// TensorValue wraps t. The tensor is stored by reference.
func TensorValue(t *tensor.Tensor) Value {
	return Value{kind: KindTensor, tensor: t}
}

// ScalarValue wraps f.
func ScalarValue(f float64) Value {
	return Value{kind: KindScalar, scalar: f}
}

// SequenceValue wraps vs in order.
func SequenceValue(vs ...Value) Value {
	return Value{kind: KindSequence, seq: vs}
}

// Kind returns the payload kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v holds a payload.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// AsTensor returns the tensor payload.
func (v Value) AsTensor() (*tensor.Tensor, error) {
	if v.kind != KindTensor {
		return nil, &KindError{Want: KindTensor, Got: v.kind}
	}
	return v.tensor, nil
}

// AsScalar returns the scalar payload.
func (v Value) AsScalar() (float64, error) {
	if v.kind != KindScalar {
		return 0, &KindError{Want: KindScalar, Got: v.kind}
	}
	return v.scalar, nil
}

// AsSequence returns the sequence payload.
func (v Value) AsSequence() ([]Value, error) {
	if v.kind != KindSequence {
		return nil, &KindError{Want: KindSequence, Got: v.kind}
	}
	return v.seq, nil
}

func (v Value) String() string {
	switch v.kind {
	case KindTensor:
		return v.tensor.String()
	case KindScalar:
		return fmt.Sprintf("scalar(%g)", v.scalar)
	case KindSequence:
		return fmt.Sprintf("sequence(%d)", len(v.seq))
	default:
		return "invalid"
	}
}
