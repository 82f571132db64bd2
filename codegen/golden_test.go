package codegen

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	multicode "github.com/redvampir/multicode-sub002"
)

// TestGolden runs every testdata/*.txtar archive. An archive holds
// graph.json, want.cpp and optionally options.json layered over the test
// defaults.
func TestGolden(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			archive, err := txtar.ParseFile(file)
			require.NoError(t, err)

			sections := make(map[string][]byte, len(archive.Files))
			for _, f := range archive.Files {
				sections[f.Name] = f.Data
			}
			require.Contains(t, sections, "graph.json")
			require.Contains(t, sections, "want.cpp")

			opts := testOptions()
			if raw, ok := sections["options.json"]; ok {
				require.NoError(t, json.Unmarshal(raw, &opts))
			}

			var graph multicode.Graph
			require.NoError(t, json.Unmarshal(sections["graph.json"], &graph))

			out, err := NewDriver(NewStandardRegistry(zerolog.Nop()), opts, zerolog.Nop()).Generate(&graph)
			require.NoError(t, err)

			if diff := cmp.Diff(string(sections["want.cpp"]), out.Code()); diff != "" {
				t.Errorf("generated code mismatch (-want +got):\n%s", diff)
			}
			require.Empty(t, out.Diagnostics)
		})
	}
}
