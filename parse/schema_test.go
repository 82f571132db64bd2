package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSchema(t *testing.T) {
	t.Parallel()

	schema, err := DocumentSchema()
	require.NoError(t, err)

	assert.Equal(t, SchemaDraft, schema.Schema)
	assert.Equal(t, []string{"graph"}, schema.Required)
	for _, name := range []string{"graph", "function", "node", "edge", "parameter", "options"} {
		assert.Contains(t, schema.Defs, name)
	}
	assert.Equal(t, "#/$defs/graph", schema.Defs["function"].Properties["graph"].Ref)
	assert.Contains(t, schema.Defs["node"].Properties, "inputs")
	assert.Contains(t, schema.Defs["options"].Properties, "indentWidth")

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$defs"`)
	assert.Contains(t, string(data), `"$ref":"#/$defs/node"`)
}
