package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestOperationsValidateAgainstSchema(t *testing.T) {
	require.NoError(t, ValidateAll())
}

func TestParse_OperationKinds(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)

	def, err := Shipments.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, ast.Query, def.Operation)
	assert.Len(t, def.VariableDefinitions, 4)

	def, err = FlagShipment.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, ast.Mutation, def.Operation)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)

	bad := Operation{Name: "Bad", Field: "shipments", Document: `query Bad { shipments { nope } }`}
	_, err = bad.Parse(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestParse_RejectsNameMismatch(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)

	op := Operation{Name: "Other", Document: `query Me { me { id } }`}
	_, err = op.Parse(s)
	require.Error(t, err)
}
