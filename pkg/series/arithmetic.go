package series

import (
	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/kernel"
)

// binaryOp identifies an elementwise arithmetic operation.
type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
)

func (op binaryOp) String() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opDiv:
		return "div"
	default:
		return "unknown"
	}
}

// Add returns the elementwise sum of two same-typed numeric series. The
// result is valid at a row only where both operands are valid.
func (s *Series) Add(other *Series) (*Series, error) { return s.binary(other, opAdd) }

// Sub returns the elementwise difference of two same-typed numeric series.
func (s *Series) Sub(other *Series) (*Series, error) { return s.binary(other, opSub) }

// Mul returns the elementwise product of two same-typed numeric series.
func (s *Series) Mul(other *Series) (*Series, error) { return s.binary(other, opMul) }

// Div returns the elementwise quotient of two same-typed numeric series.
// Float64 division follows IEEE 754; int32 division by a valid zero fails.
func (s *Series) Div(other *Series) (*Series, error) { return s.binary(other, opDiv) }

func (s *Series) binary(other *Series, op binaryOp) (*Series, error) {
	if s.Len() != other.Len() {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"%s: length mismatch %d vs %d", op, s.Len(), other.Len())
	}
	if s.dtype != other.dtype {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"%s: type mismatch %s vs %s", op, s.dtype, other.dtype)
	}

	validity := make([]bool, s.Len())
	for i := range validity {
		validity[i] = s.validity[i] && other.validity[i]
	}

	name := s.name
	switch s.dtype {
	case Float64:
		dst := make([]float64, s.Len())
		var err error
		switch op {
		case opAdd:
			err = kernel.AddFloat64(dst, s.float64s, other.float64s)
		case opSub:
			err = kernel.SubFloat64(dst, s.float64s, other.float64s)
		case opMul:
			err = kernel.MulFloat64(dst, s.float64s, other.float64s)
		case opDiv:
			err = kernel.DivFloat64(dst, s.float64s, other.float64s)
		}
		if err != nil {
			return nil, err
		}
		return &Series{name: name, dtype: Float64, float64s: dst, validity: validity}, nil

	case Int32:
		dst := make([]int32, s.Len())
		b := other.int32s
		if op == opDiv {
			// Null slots are masked to 1 so the kernel never divides by a
			// junk zero; their validity is already false.
			b = make([]int32, s.Len())
			for i, v := range other.int32s {
				if !validity[i] && v == 0 {
					b[i] = 1
				} else {
					b[i] = v
				}
			}
		}
		var err error
		switch op {
		case opAdd:
			err = kernel.AddInt32(dst, s.int32s, other.int32s)
		case opSub:
			err = kernel.SubInt32(dst, s.int32s, other.int32s)
		case opMul:
			err = kernel.MulInt32(dst, s.int32s, other.int32s)
		case opDiv:
			err = kernel.DivInt32(dst, s.int32s, b)
		}
		if err != nil {
			return nil, err
		}
		return &Series{name: name, dtype: Int32, int32s: dst, validity: validity}, nil

	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"%s not supported for %s series", op, s.dtype)
	}
}
