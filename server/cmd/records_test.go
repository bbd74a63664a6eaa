package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRecords(t *testing.T) {
	records := []map[string]any{
		{"name": "Jotaro Kujo", "email": "jotaro@kujo.com"},
		{"name": "Dio Brando", "email": "dio@brando.com"},
	}

	t.Run("json", func(t *testing.T) {
		raw, err := marshalRecords(records, outputJSON)
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"name": "Jotaro Kujo", "email": "jotaro@kujo.com"},
			{"name": "Dio Brando", "email": "dio@brando.com"}
		]`, string(raw))
	})

	t.Run("yaml", func(t *testing.T) {
		raw, err := marshalRecords(records, outputYAML)
		require.NoError(t, err)
		assert.YAMLEq(t, `
- name: Jotaro Kujo
  email: jotaro@kujo.com
- name: Dio Brando
  email: dio@brando.com
`, string(raw))
	})

	t.Run("empty collection", func(t *testing.T) {
		raw, err := marshalRecords([]map[string]any{}, outputJSON)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})
}
