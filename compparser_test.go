package compval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newScenarioRegistry registers node{name, ip, port} and
// cluster{name, size, nodes[10]}, the worked-example types used below.
func newScenarioRegistry(t *testing.T) (*Registry, *TypeDef, *TypeDef) {
	t.Helper()
	r := NewRegistry()
	node, err := r.Register("node", "string name; string ip; int port")
	require.NoError(t, err)
	cluster, err := r.Register("cluster", "string name; int size; node[10] nodes")
	require.NoError(t, err)
	return r, node, cluster
}

func TestScenario1_InitialParseAndSerializePrefix(t *testing.T) {
	_, _, cluster := newScenarioRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	got := Serialize(cfg, v1, cluster, false)
	require.Contains(t, got, "{name: 'c1', size: 1, nodes: [{name: 'n0'")
}

func TestScenario2_PatchLeavesSiblingFieldsNullOnUntouchedElement(t *testing.T) {
	_, _, cluster := newScenarioRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	v2, err := Parse(cfg, "{nodes: [1: {port: 6000}]}", cluster, v1)
	require.NoError(t, err)
	defer v2.Free(cluster)

	p, err := ResolvePath(v2, cluster, "cluster.nodes[1].port")
	require.NoError(t, err)
	require.EqualValues(t, 6000, readI64(p.Bytes(), 0))

	pName, err := ResolvePath(v2, cluster, "cluster.nodes[1].name")
	require.NoError(t, err)
	require.Equal(t, "", pName.String())

	pIP, err := ResolvePath(v2, cluster, "cluster.nodes[1].ip")
	require.NoError(t, err)
	require.Equal(t, "", pIP.String())

	// node[0] and the record's own fields are untouched by the patch.
	p0Port, err := ResolvePath(v2, cluster, "cluster.nodes[0].port")
	require.NoError(t, err)
	require.EqualValues(t, 5432, readI64(p0Port.Bytes(), 0))

	pName0, err := ResolvePath(v2, cluster, "cluster.nodes[0].name")
	require.NoError(t, err)
	require.Equal(t, "n0", pName0.String())
}

func TestScenario3_PatchListEquivalentToConvertPath(t *testing.T) {
	_, _, cluster := newScenarioRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	lit, err := ConvertPathToLiteral("cluster.nodes[0].port", "6543")
	require.NoError(t, err)
	require.Equal(t, "{nodes: [0: {port: 6543}]}", lit)

	viaDirect, err := Parse(cfg, lit, cluster, v1)
	require.NoError(t, err)
	defer viaDirect.Free(cluster)

	viaPatchList, err := Parse(cfg, lit+";", cluster, v1)
	require.NoError(t, err)
	defer viaPatchList.Free(cluster)

	require.Equal(t, 0, Compare(viaDirect, viaPatchList, cluster))

	p, err := ResolvePath(viaDirect, cluster, "cluster.nodes[0].port")
	require.NoError(t, err)
	require.EqualValues(t, 6543, readI64(p.Bytes(), 0))
}

func TestScenario4_DuplicateComparesEqual(t *testing.T) {
	_, _, cluster := newScenarioRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	dup := v1.Duplicate(cluster)
	defer dup.Free(cluster)

	require.Equal(t, 0, Compare(v1, dup, cluster))
}

func TestScenario5_OutOfBoundsIndexLeavesPreviousUnchanged(t *testing.T) {
	_, _, cluster := newScenarioRegistry(t)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v1.Free(cluster)

	before := Serialize(cfg, v1, cluster, true)

	_, err = Parse(cfg, "{nodes: [10: {port: 1}]}", cluster, v1)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)

	after := Serialize(cfg, v1, cluster, true)
	require.Equal(t, before, after)
}

func TestScenario6_ExtendedFormThresholdOnVarArray(t *testing.T) {
	r := NewRegistry()
	intArr, err := r.Resolve("int[]")
	require.NoError(t, err)

	cfg := defaultConfig(Config{ExpandArrayViewThreshold: 3})

	below, err := Parse(cfg, "[1, 2]", intArr, nil)
	require.NoError(t, err)
	defer below.Free(intArr)
	require.NotContains(t, Serialize(cfg, below, intArr, false), "size:")

	atThreshold, err := Parse(cfg, "[1, 2, 3]", intArr, nil)
	require.NoError(t, err)
	defer atThreshold.Free(intArr)
	require.Contains(t, Serialize(cfg, atThreshold, intArr, false), "{size: 3, data: [")
}

func TestQuotedAtomicWithEscapedQuote(t *testing.T) {
	_, node, _ := newScenarioRegistry(t)
	cfg := defaultConfig()

	v, err := Parse(cfg, "{name: 'can''t'}", node, nil)
	require.NoError(t, err)
	defer v.Free(node)

	p, err := ResolvePath(v, node, "node.name")
	require.NoError(t, err)
	require.Equal(t, "can't", p.String())
}

func TestMixedIndexArrayRejected(t *testing.T) {
	r := NewRegistry()
	intArr, err := r.Resolve("int[3]")
	require.NoError(t, err)
	cfg := defaultConfig()

	_, err = Parse(cfg, "[0: 1, 2, 2: 3]", intArr, nil)
	require.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestExtendedFormGrowZeroesNewIndices(t *testing.T) {
	r := NewRegistry()
	intArr, err := r.Resolve("int[]")
	require.NoError(t, err)
	cfg := defaultConfig()

	v1, err := Parse(cfg, "[7, 8]", intArr, nil)
	require.NoError(t, err)
	defer v1.Free(intArr)

	v2, err := Parse(cfg, "{size: 5}", intArr, v1)
	require.NoError(t, err)
	defer v2.Free(intArr)

	require.Equal(t, "{size: 5, data: [7, 8, 0, 0, 0]}", Serialize(cfg, v2, intArr, false))
}

func TestExtendedFormDataExceedingSizeFails(t *testing.T) {
	r := NewRegistry()
	intArr, err := r.Resolve("int[]")
	require.NoError(t, err)
	cfg := defaultConfig()

	_, err = Parse(cfg, "{size: 2, data: [0, 1, 2]}", intArr, nil)
	require.ErrorIs(t, err, ErrInvalidLiteral)
}
