package testsupport

import (
	"os"
	"path/filepath"
)

// WriteSized streams size bytes of the Plaintext pattern to rel, in chunks so
// multi-megabyte non-asset files stay cheap. It returns the absolute path.
func (g *Game) WriteSized(rel string, size int) string {
	g.t.Helper()

	path := g.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		g.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	f, err := os.Create(path)
	if err != nil {
		g.t.Fatalf("create %s: %v", rel, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	chunk := Plaintext(chunkSize)
	for remaining := size; remaining > 0; remaining -= chunkSize {
		if _, err := f.Write(chunk[:min(remaining, chunkSize)]); err != nil {
			g.t.Fatalf("write %s: %v", rel, err)
		}
	}
	return path
}
