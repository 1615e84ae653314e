package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rpgdecrypt/internal/cipher"
	"rpgdecrypt/internal/keycodec"
)

// DefaultKey is a 16-byte key in the shape RPG Maker writes to System.json.
const DefaultKey = "d41d8cd98f00b204e9800998ecf8427e"

// Layout selects where System.json lives under the game root.
type Layout string

const (
	// LayoutMV places the manifest under www/data.
	LayoutMV Layout = "www/data"
	// LayoutMZ places the manifest under data.
	LayoutMZ Layout = "data"
)

// Game is a fake game installation rooted in a temp directory.
type Game struct {
	t    testing.TB
	Root string
	Key  keycodec.Key
	// ManifestPath is empty until WriteManifest is called.
	ManifestPath string
}

// NewGame creates an empty game directory named "Game" under a fresh temp
// directory, so mirrored output lands beside it inside the same temp tree.
func NewGame(t testing.TB) *Game {
	t.Helper()

	root := filepath.Join(t.TempDir(), "Game")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir game root: %v", err)
	}
	return &Game{t: t, Root: root}
}

// WriteManifest writes System.json with the given fields under layout.
// encryptionKey values that are strings are also parsed into g.Key.
func (g *Game) WriteManifest(layout Layout, fields map[string]any) string {
	g.t.Helper()

	data, err := json.Marshal(fields)
	if err != nil {
		g.t.Fatalf("marshal manifest: %v", err)
	}
	path := g.WriteRaw(filepath.Join(string(layout), "System.json"), data)
	g.ManifestPath = path
	if hex, ok := fields["encryptionKey"].(string); ok {
		if key, err := keycodec.Parse(hex); err == nil {
			g.Key = key
		}
	}
	return path
}

// WriteEncryptedManifest writes an MZ-layout manifest with both encryption
// flags set and the given key.
func (g *Game) WriteEncryptedManifest(key string) string {
	g.t.Helper()
	return g.WriteManifest(LayoutMZ, map[string]any{
		"gameTitle":          "Test Game",
		"encryptionKey":      key,
		"hasEncryptedAudio":  true,
		"hasEncryptedImages": true,
	})
}

// WriteAsset encrypts plain with the game key and stores it at rel.
func (g *Game) WriteAsset(rel string, plain []byte) string {
	g.t.Helper()

	if g.Key.IsZero() {
		g.t.Fatal("WriteAsset requires a manifest with a valid key")
	}
	return g.WriteRaw(rel, cipher.Encrypt(plain, g.Key))
}

// WriteRaw stores data verbatim at rel and returns the absolute path.
func (g *Game) WriteRaw(rel string, data []byte) string {
	g.t.Helper()

	path := filepath.Join(g.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		g.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		g.t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// Path joins rel onto the game root.
func (g *Game) Path(rel string) string {
	return filepath.Join(g.Root, filepath.FromSlash(rel))
}

// ReadFields decodes a JSON object file into its top-level fields.
func ReadFields(t testing.TB, path string) map[string]json.RawMessage {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return fields
}

// Plaintext returns n bytes of a deterministic, non-repeating-looking pattern.
func Plaintext(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*7 + 3)
	}
	return buf
}

// AssertMissing fails the test when path exists.
func AssertMissing(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Fatalf("expected %s to be absent", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
}
