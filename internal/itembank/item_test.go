package itembank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/thetacat/internal/irt"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "bank.yaml", `
items:
  - id: alg-1
    a: 1.2
    b: 0
    c: 0.1
  - id: alg-2
    a: 0.9
    b: -0.5
    c: 0.05
    content: Solve 2x + 3 = 7
`)
	items, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alg-1", items[0].ID)
	assert.Equal(t, irt.Item{A: 0.9, B: -0.5, C: 0.05}, items[1].Params())
	assert.Equal(t, "Solve 2x + 3 = 7", items[1].Content)
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "bank.json", `{"items":[{"id":"q1","a":1.5,"b":0.5,"c":0.2}]}`)
	items, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, irt.Item{A: 1.5, B: 0.5, C: 0.2}, items[0].Params())
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing id", "items:\n  - a: 1\n    b: 0\n    c: 0.1\n", `"required"`},
		{"guessing above one", "items:\n  - id: x\n    a: 1\n    b: 0\n    c: 1.5\n", `"lte"`},
		{"negative guessing", "items:\n  - id: x\n    a: 1\n    b: 0\n    c: -0.1\n", `"gte"`},
		{"duplicate id", "items:\n  - id: x\n    a: 1\n    b: 0\n    c: 0\n  - id: x\n    a: 2\n    b: 1\n    c: 0\n", "duplicate item id"},
		{"malformed", "items: [", "parse item file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, "bank.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
