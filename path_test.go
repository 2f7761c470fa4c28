package compval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertPathToLiteral_RecordAndIndexSteps(t *testing.T) {
	lit, err := ConvertPathToLiteral("cluster.nodes[1].port", "6000")
	require.NoError(t, err)
	require.Equal(t, "{nodes: [1: {port: 6000}]}", lit)
}

func TestConvertPathToLiteral_RootOnlyHasNoSteps(t *testing.T) {
	_, err := ConvertPathToLiteral("cluster", "6000")
	require.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestConvertPathToLiteral_RejectsMalformedIndex(t *testing.T) {
	_, err := ConvertPathToLiteral("cluster.nodes[x]", "1")
	require.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestResolvePath_WalksRecordsAndArrays(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("node", "string name; string ip; int port")
	require.NoError(t, err)
	cluster, err := r.Register("cluster", "string name; int size; node[10] nodes")
	require.NoError(t, err)

	cfg := defaultConfig()
	v, err := Parse(cfg, "{name: 'c1', size: 1, nodes: [{name: 'n0', ip: '10.0.0.1', port: 5432}]}", cluster, nil)
	require.NoError(t, err)
	defer v.Free(cluster)

	p, err := ResolvePath(v, cluster, "cluster.nodes[0].port")
	require.NoError(t, err)
	require.Equal(t, intType, p.Type)
	require.EqualValues(t, 5432, readI64(p.Bytes(), 0))

	pName, err := ResolvePath(v, cluster, "cluster.nodes[0].name")
	require.NoError(t, err)
	require.Equal(t, "n0", pName.String())
}

func TestResolvePath_UnknownFieldFails(t *testing.T) {
	r := NewRegistry()
	node, err := r.Register("node", "string name; int port")
	require.NoError(t, err)

	cfg := defaultConfig()
	v, err := Parse(cfg, "{name: 'n0', port: 1}", node, nil)
	require.NoError(t, err)
	defer v.Free(node)

	_, err = ResolvePath(v, node, "node.bogus")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestResolvePath_CrossesVarArrayDataBoundary(t *testing.T) {
	r := NewRegistry()
	intArr, err := r.Resolve("int[]")
	require.NoError(t, err)

	cfg := defaultConfig()
	v, err := Parse(cfg, "[10, 20, 30]", intArr, nil)
	require.NoError(t, err)
	defer v.Free(intArr)

	p, err := ResolvePath(v, intArr, "weights[1]")
	require.NoError(t, err)
	require.EqualValues(t, 20, readI64(p.Bytes(), 0))

	pSize, err := ResolvePath(v, intArr, "weights.size")
	require.NoError(t, err)
	require.EqualValues(t, 3, readI64(pSize.Bytes(), 0))
}
