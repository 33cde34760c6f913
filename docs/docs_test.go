package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var routerAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

func TestDocumentCoversAnnotatedRoutes(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	files, err := filepath.Glob(filepath.Join("..", "gateway", "*.go"))
	require.NoError(t, err)

	found := 0
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		src, err := os.ReadFile(name)
		require.NoError(t, err)

		for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
			found++
			path, method := m[1], strings.ToLower(m[2])
			require.Contains(t, doc.Paths, path, "%s documents %s", filepath.Base(name), path)
			assert.Contains(t, doc.Paths[path], method, "%s %s", method, path)
		}
	}
	assert.NotZero(t, found)
}
