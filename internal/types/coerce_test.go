package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCoercion(t *testing.T) {
	int32Sig := Descriptor{Base: Int32, Attrs: Signed}
	int64Sig := Descriptor{Base: Int64, Attrs: Signed}
	uint32Uns := Descriptor{Base: UInt32}
	double := Descriptor{Base: Double}
	single := Descriptor{Base: Single}
	ascii := Descriptor{Base: AsciiString}
	unicode := Descriptor{Base: UnicodeString}

	cases := []struct {
		name     string
		from, to Descriptor
		want     Coercion
	}{
		{"identical", int32Sig, int32Sig, Identical},
		{"widen signed int", int32Sig, int64Sig, ImplicitSafe},
		{"narrow signed int", int64Sig, int32Sig, ImplicitLossy},
		{"sign change same width", int32Sig, uint32Uns, ImplicitLossy},
		{"int to double", int32Sig, double, ImplicitSafe},
		{"int64 to single lossy", int64Sig, single, ImplicitLossy},
		{"float to int explicit", double, int32Sig, ExplicitRequired},
		{"single to double safe", single, double, ImplicitSafe},
		{"double to single lossy", double, single, ImplicitLossy},
		{"string encoding safe", ascii, unicode, ImplicitSafe},
		{"numeric to string incompatible", int32Sig, ascii, Incompatible},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CheckCoercion(c.from, c.to))
		})
	}
}

func TestPromote(t *testing.T) {
	int32Sig := Descriptor{Base: Int32, Attrs: Signed}
	int64Sig := Descriptor{Base: Int64, Attrs: Signed}
	double := Descriptor{Base: Double}

	assert.Equal(t, double, Promote(int32Sig, double))
	assert.Equal(t, int64Sig, Promote(int32Sig, int64Sig))
	assert.Equal(t, int64Sig, Promote(int64Sig, int32Sig))
}

func TestInferIntLiteral(t *testing.T) {
	assert.Equal(t, Descriptor{Base: Int32, Attrs: Signed}, InferIntLiteral(42))
	assert.Equal(t, Descriptor{Base: Int32, Attrs: Signed}, InferIntLiteral(1<<31-1))
	assert.Equal(t, Descriptor{Base: Int64, Attrs: Signed}, InferIntLiteral(1<<31))
	assert.Equal(t, Descriptor{Base: Int64, Attrs: Signed}, InferIntLiteral(-(1<<31) - 1))
}
