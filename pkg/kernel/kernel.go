// Package kernel provides vectorized elementwise arithmetic and reductions
// over numeric slices. Every operation has two implementations: a fast path
// processing fixed-width lanes per iteration (4 lanes for float64, 8 for
// int32) that the compiler can auto-vectorize on hardware with wide SIMD
// units, and a portable scalar path with identical semantics. Trailing
// elements not divisible by the lane width are always handled by a scalar
// remainder loop; the lane loop and remainder loop together visit every
// index exactly once.
//
// Reductions group partial sums per lane on the fast path, so results can
// differ in the last bits from the fully sequential scalar path. The
// grouping is deterministic for a given configuration.
//
// All functions are free of side effects beyond the caller-supplied output
// slice.
package kernel

import (
	"runtime"
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"

	"github.com/quiverdb/quiver/pkg/errors"
)

// Lane widths of the fast path. These match the widest vector registers in
// common use: 4x64-bit floats and 8x32-bit integers per 256-bit register.
const (
	LanesFloat64 = 4
	LanesInt32   = 8
)

// fastPath is non-zero when the lane-unrolled implementations are active.
var fastPath int32

func init() {
	if detectWideVectors() {
		atomic.StoreInt32(&fastPath, 1)
	}
}

// detectWideVectors reports whether the running hardware exposes a wide
// SIMD instruction set the lane loops can exploit.
func detectWideVectors() bool {
	if runtime.GOARCH == "arm64" {
		// NEON is baseline on arm64.
		return true
	}
	return cpuid.CPU.Supports(cpuid.AVX2) || cpuid.CPU.Supports(cpuid.AVX512F)
}

// FastPathEnabled reports whether the lane-unrolled fast path is active.
func FastPathEnabled() bool {
	return atomic.LoadInt32(&fastPath) != 0
}

// SetFastPath toggles the fast path. Used by configuration (force_scalar)
// and by tests cross-checking the two implementations.
func SetFastPath(enabled bool) {
	if enabled {
		atomic.StoreInt32(&fastPath, 1)
	} else {
		atomic.StoreInt32(&fastPath, 0)
	}
}

func checkBinary(dst, a, b int) error {
	if a != b || dst != a {
		return errors.Newf(errors.ErrorTypeInvalidOperation,
			"length mismatch: dst=%d a=%d b=%d", dst, a, b)
	}
	return nil
}

// AddFloat64 writes a[i]+b[i] into dst for every index.
func AddFloat64(dst, a, b []float64) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesFloat64; i += LanesFloat64 {
			dst[i] = a[i] + b[i]
			dst[i+1] = a[i+1] + b[i+1]
			dst[i+2] = a[i+2] + b[i+2]
			dst[i+3] = a[i+3] + b[i+3]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] + b[i]
	}
	return nil
}

// SubFloat64 writes a[i]-b[i] into dst for every index.
func SubFloat64(dst, a, b []float64) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesFloat64; i += LanesFloat64 {
			dst[i] = a[i] - b[i]
			dst[i+1] = a[i+1] - b[i+1]
			dst[i+2] = a[i+2] - b[i+2]
			dst[i+3] = a[i+3] - b[i+3]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] - b[i]
	}
	return nil
}

// MulFloat64 writes a[i]*b[i] into dst for every index.
func MulFloat64(dst, a, b []float64) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesFloat64; i += LanesFloat64 {
			dst[i] = a[i] * b[i]
			dst[i+1] = a[i+1] * b[i+1]
			dst[i+2] = a[i+2] * b[i+2]
			dst[i+3] = a[i+3] * b[i+3]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] * b[i]
	}
	return nil
}

// DivFloat64 writes a[i]/b[i] into dst for every index. Division by zero
// follows IEEE 754 (Inf/NaN), matching the scalar semantics.
func DivFloat64(dst, a, b []float64) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesFloat64; i += LanesFloat64 {
			dst[i] = a[i] / b[i]
			dst[i+1] = a[i+1] / b[i+1]
			dst[i+2] = a[i+2] / b[i+2]
			dst[i+3] = a[i+3] / b[i+3]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] / b[i]
	}
	return nil
}

// AddInt32 writes a[i]+b[i] into dst for every index.
func AddInt32(dst, a, b []int32) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesInt32; i += LanesInt32 {
			dst[i] = a[i] + b[i]
			dst[i+1] = a[i+1] + b[i+1]
			dst[i+2] = a[i+2] + b[i+2]
			dst[i+3] = a[i+3] + b[i+3]
			dst[i+4] = a[i+4] + b[i+4]
			dst[i+5] = a[i+5] + b[i+5]
			dst[i+6] = a[i+6] + b[i+6]
			dst[i+7] = a[i+7] + b[i+7]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] + b[i]
	}
	return nil
}

// SubInt32 writes a[i]-b[i] into dst for every index.
func SubInt32(dst, a, b []int32) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesInt32; i += LanesInt32 {
			dst[i] = a[i] - b[i]
			dst[i+1] = a[i+1] - b[i+1]
			dst[i+2] = a[i+2] - b[i+2]
			dst[i+3] = a[i+3] - b[i+3]
			dst[i+4] = a[i+4] - b[i+4]
			dst[i+5] = a[i+5] - b[i+5]
			dst[i+6] = a[i+6] - b[i+6]
			dst[i+7] = a[i+7] - b[i+7]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] - b[i]
	}
	return nil
}

// MulInt32 writes a[i]*b[i] into dst for every index.
func MulInt32(dst, a, b []int32) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesInt32; i += LanesInt32 {
			dst[i] = a[i] * b[i]
			dst[i+1] = a[i+1] * b[i+1]
			dst[i+2] = a[i+2] * b[i+2]
			dst[i+3] = a[i+3] * b[i+3]
			dst[i+4] = a[i+4] * b[i+4]
			dst[i+5] = a[i+5] * b[i+5]
			dst[i+6] = a[i+6] * b[i+6]
			dst[i+7] = a[i+7] * b[i+7]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] * b[i]
	}
	return nil
}

// DivInt32 writes a[i]/b[i] into dst for every index. A zero divisor at any
// index fails with InvalidOperation before dst is modified.
func DivInt32(dst, a, b []int32) error {
	if err := checkBinary(len(dst), len(a), len(b)); err != nil {
		return err
	}
	for i := range b {
		if b[i] == 0 {
			return errors.Newf(errors.ErrorTypeInvalidOperation, "integer division by zero at index %d", i)
		}
	}
	i := 0
	if FastPathEnabled() {
		for ; i <= len(a)-LanesInt32; i += LanesInt32 {
			dst[i] = a[i] / b[i]
			dst[i+1] = a[i+1] / b[i+1]
			dst[i+2] = a[i+2] / b[i+2]
			dst[i+3] = a[i+3] / b[i+3]
			dst[i+4] = a[i+4] / b[i+4]
			dst[i+5] = a[i+5] / b[i+5]
			dst[i+6] = a[i+6] / b[i+6]
			dst[i+7] = a[i+7] / b[i+7]
		}
	}
	for ; i < len(a); i++ {
		dst[i] = a[i] / b[i]
	}
	return nil
}
