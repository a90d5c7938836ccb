package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{EntityType: EntityEvaluation, EntityID: "e1"})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE true AND entity_type = $1 AND entity_id = $2", query)
	assert.Equal(t, []any{EntityEvaluation, "e1"}, args)

	query, args = buildBaseQuery("SELECT id", Filter{})
	assert.Equal(t, "SELECT id FROM audit_events WHERE true", query)
	assert.Empty(t, args)
}

func TestMarshalState(t *testing.T) {
	raw, err := marshalState(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = marshalState(map[string]int{"revision": 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"revision":2}`, string(raw))
}
