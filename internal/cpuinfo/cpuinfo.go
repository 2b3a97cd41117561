// Package cpuinfo reports the SIMD capabilities of the host CPU that the
// vectorized distance kernels can make use of.
package cpuinfo

import "runtime"

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents pure Go kernels (no SIMD).
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit SIMD, ASIMD).
	NEON
	// AVX2 represents x86-64 AVX2 (256-bit SIMD with FMA).
	AVX2
	// AVX512 represents x86-64 AVX-512 (512-bit SIMD).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// CPU feature flags, set by platform-specific init.
var (
	hasASIMD    bool // ARM64 NEON
	hasAVX2     bool // x86-64 AVX2 + FMA
	hasAVX512F  bool // x86-64 AVX-512 Foundation
	hasAVX512BW bool // x86-64 AVX-512 Byte/Word
)

// Best returns the widest ISA available on this CPU.
func Best() ISA {
	switch runtime.GOARCH {
	case "amd64":
		if hasAVX512F && hasAVX512BW {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	case "arm64":
		if hasASIMD {
			return NEON
		}
	}
	return Generic
}

// Features lists the detected feature flags by name.
func Features() []string {
	var f []string
	if hasASIMD {
		f = append(f, "asimd")
	}
	if hasAVX2 {
		f = append(f, "avx2", "fma")
	}
	if hasAVX512F {
		f = append(f, "avx512f")
	}
	if hasAVX512BW {
		f = append(f, "avx512bw")
	}
	return f
}
