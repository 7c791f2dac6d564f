package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbc/internal/types"
)

func TestGlobalSlotsAreSequential(t *testing.T) {
	tab := New()
	_, err := tab.DeclareGlobal("a", types.Descriptor{Base: types.Int32, Attrs: types.Signed})
	require.NoError(t, err)
	_, err = tab.DeclareGlobal("b", types.Descriptor{Base: types.Double})
	require.NoError(t, err)

	symA, _, ok := tab.LookupVariable("", "a")
	require.True(t, ok)
	symB, _, ok := tab.LookupVariable("", "b")
	require.True(t, ok)

	assert.Equal(t, 0, symA.Slot)
	assert.Equal(t, 1, symB.Slot)
	assert.Equal(t, 2, tab.GlobalCount())
}

func TestParameterShadowsGlobal(t *testing.T) {
	tab := New()
	_, err := tab.DeclareGlobal("x", types.Descriptor{Base: types.Int32, Attrs: types.Signed})
	require.NoError(t, err)
	_, err = tab.DeclareLocal("f", "x", types.Descriptor{Base: types.Double}, Parameter)
	require.NoError(t, err)

	sym, key, ok := tab.LookupVariable("f", "x")
	require.True(t, ok)
	assert.Equal(t, "f", key.Func)
	assert.Equal(t, types.Double, sym.Type.Base)

	sym, key, ok = tab.LookupVariable("g", "x")
	require.True(t, ok)
	assert.Equal(t, "", key.Func)
	assert.Equal(t, types.Int32, sym.Type.Base)
}

func TestSharedReexportsGlobalSlot(t *testing.T) {
	tab := New()
	g, err := tab.DeclareGlobal("counter", types.Descriptor{Base: types.Int32, Attrs: types.Signed})
	require.NoError(t, err)

	require.NoError(t, tab.Shared("f", "counter"))
	sym, _, ok := tab.LookupVariable("f", "counter")
	require.True(t, ok)
	assert.Equal(t, g.Slot, sym.Slot)
	assert.True(t, sym.Type.Has(types.Shared))
}

func TestDuplicateSymbolRejected(t *testing.T) {
	tab := New()
	_, err := tab.DeclareLocal("f", "x", types.Descriptor{Base: types.Int32}, Local)
	require.NoError(t, err)
	_, err = tab.DeclareLocal("f", "x", types.Descriptor{Base: types.Int32}, Local)
	assert.Error(t, err)
}

func TestTypeRegistryAssignsMonotonicIDs(t *testing.T) {
	tab := New()
	_, err := tab.DeclareType("Point", []FieldSymbol{
		{Name: "x", Type: types.Descriptor{Base: types.Int32, Attrs: types.Signed}},
		{Name: "y", Type: types.Descriptor{Base: types.Int32, Attrs: types.Signed}},
	})
	require.NoError(t, err)
	_, err = tab.DeclareType("Line", nil)
	require.NoError(t, err)

	id1, ok := tab.TypeID("Point")
	require.True(t, ok)
	id2, ok := tab.TypeID("Line")
	require.True(t, ok)
	assert.Equal(t, uint32(0), id1)
	assert.Equal(t, uint32(1), id2)

	pt, _ := tab.LookupType("Point")
	assert.Equal(t, 16, pt.Size)
	assert.Equal(t, 8, pt.Fields[1].Offset)
}
