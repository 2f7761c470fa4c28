package compval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *TypeDef) {
	t.Helper()
	r := NewRegistry()
	_, err := r.Register("node", "string name; string ip; int port")
	require.NoError(t, err)
	cluster, err := r.Register("cluster", "string name; node[3] nodes; int[] weights")
	require.NoError(t, err)
	return r, cluster
}

func TestDuplicate_IndependentOfSource(t *testing.T) {
	_, cluster := newTestRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'prod', nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}], weights: [1, 2, 3]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	v2 := v1.Duplicate(cluster)
	defer v2.Free(cluster)

	require.Equal(t, 0, Compare(v1, v2, cluster))

	// Mutating v2 through a fresh patch must not affect v1.
	v3, err := Parse(cfg, "{nodes: [0: {port: 9999}]}", cluster, v2)
	require.NoError(t, err)
	defer v3.Free(cluster)

	p0, err := ResolvePath(v1, cluster, "cluster.nodes[0].port")
	require.NoError(t, err)
	require.EqualValues(t, 5432, readI64(p0.Bytes(), 0))
}

func TestFree_RemovesOwnedHandles(t *testing.T) {
	_, cluster := newTestRegistry(t)
	cfg := defaultConfig()
	v, err := Parse(cfg, "{name: 'prod', nodes: [{name: 'n0', ip: '1.1.1.1', port: 1}], weights: [1, 2]}", cluster, nil)
	require.NoError(t, err)

	require.NotEmpty(t, v.strings)
	require.NotEmpty(t, v.arrays)

	v.Free(cluster)
	require.Empty(t, v.strings)
	require.Empty(t, v.arrays)
}

func TestCompare_OrderingRules(t *testing.T) {
	_, cluster := newTestRegistry(t)
	cfg := defaultConfig()

	a, err := Parse(cfg, "{name: 'a'}", cluster, nil)
	require.NoError(t, err)
	defer a.Free(cluster)

	b, err := Parse(cfg, "{name: 'b'}", cluster, nil)
	require.NoError(t, err)
	defer b.Free(cluster)

	require.Negative(t, Compare(a, b, cluster))
	require.Positive(t, Compare(b, a, cluster))
	require.Zero(t, Compare(a, a.Duplicate(cluster), cluster))
}

func TestCompare_NullStringLessThanAny(t *testing.T) {
	_, cluster := newTestRegistry(t)
	cfg := defaultConfig()

	withName, err := Parse(cfg, "{name: 'anything'}", cluster, nil)
	require.NoError(t, err)
	defer withName.Free(cluster)

	withoutName, err := Parse(cfg, "{weights: []}", cluster, nil)
	require.NoError(t, err)
	defer withoutName.Free(cluster)

	require.Negative(t, Compare(withoutName, withName, cluster))
}

func TestFieldType_UnknownFieldAndIndexBounds(t *testing.T) {
	_, cluster := newTestRegistry(t)
	nodesField, _ := cluster.FieldByName("nodes")

	_, err := fieldType(cluster, "bogus")
	require.ErrorIs(t, err, ErrUnknownField)

	_, err = fieldType(nodesField.Type, "5")
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}
