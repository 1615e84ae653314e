package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rpgdecrypt/internal/fileutil"
	"rpgdecrypt/internal/keycodec"
)

// Field names in System.json.
const (
	FieldEncryptionKey      = "encryptionKey"
	FieldHasEncryptedAudio  = "hasEncryptedAudio"
	FieldHasEncryptedImages = "hasEncryptedImages"
)

// Candidates lists the System.json locations relative to the game root in
// lookup order: the MV layout first, then MZ.
var Candidates = []string{
	filepath.Join("www", "data", "System.json"),
	filepath.Join("data", "System.json"),
}

var (
	ErrNotExists          = errors.New("game directory does not exist")
	ErrNotADirectory      = errors.New("game path is not a directory")
	ErrSystemJSONNotFound = errors.New("System.json not found")
)

// Kind classifies manifest failures.
type Kind int

const (
	ReadFailed Kind = iota + 1
	InvalidContent
	EncryptionKeyNotExists
	EncryptionKeyIsNotAString
	InvalidEncryptionKey
	WriteFailed
)

func (k Kind) String() string {
	switch k {
	case ReadFailed:
		return "read failed"
	case InvalidContent:
		return "not a JSON object"
	case EncryptionKeyNotExists:
		return "encryptionKey not exists"
	case EncryptionKeyIsNotAString:
		return "encryptionKey is not a string"
	case InvalidEncryptionKey:
		return "invalid encryptionKey"
	case WriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// Error describes a failure reading or writing System.json.
type Error struct {
	Path  string
	Kind  Kind
	Value string // offending encryptionKey for InvalidEncryptionKey
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("System.json (%s): %s", e.Path, e.Kind)
	if e.Kind == InvalidEncryptionKey {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a manifest Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var mErr *Error
	return errors.As(err, &mErr) && mErr.Kind == kind
}

// Manifest is a parsed System.json.
type Manifest struct {
	Path          string
	Fields        map[string]json.RawMessage
	EncryptionKey string
	Key           keycodec.Key

	mode os.FileMode
}

// Locate returns the path of the first System.json candidate under gameRoot.
func Locate(gameRoot string) (string, error) {
	info, err := os.Stat(gameRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", gameRoot, ErrNotExists)
		}
		return "", fmt.Errorf("stat %s: %w", gameRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", gameRoot, ErrNotADirectory)
	}

	for _, rel := range Candidates {
		candidate := filepath.Join(gameRoot, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w (looked for %s and %s)", gameRoot, ErrSystemJSONNotFound, Candidates[0], Candidates[1])
}

// Read loads and validates the manifest at path, including the key format.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Kind: ReadFailed, Err: err}
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &Error{Path: path, Kind: InvalidContent, Err: err}
	}
	if fields == nil {
		// "null" decodes into a nil map.
		return nil, &Error{Path: path, Kind: InvalidContent}
	}

	raw, ok := fields[FieldEncryptionKey]
	if !ok {
		return nil, &Error{Path: path, Kind: EncryptionKeyNotExists}
	}
	// null unmarshals into a string without error, so check the token first.
	var value string
	if len(raw) == 0 || raw[0] != '"' {
		return nil, &Error{Path: path, Kind: EncryptionKeyIsNotAString}
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &Error{Path: path, Kind: EncryptionKeyIsNotAString}
	}

	key, err := keycodec.Parse(value)
	if err != nil {
		return nil, &Error{Path: path, Kind: InvalidEncryptionKey, Value: value, Err: err}
	}

	return &Manifest{
		Path:          path,
		Fields:        fields,
		EncryptionKey: value,
		Key:           key,
		mode:          mode,
	}, nil
}

// Load locates and reads the manifest under gameRoot.
func Load(gameRoot string) (*Manifest, error) {
	path, err := Locate(gameRoot)
	if err != nil {
		return nil, err
	}
	return Read(path)
}

// Write serializes all fields back to m.Path. Key order follows encoding/json
// (sorted); the engine only requires valid JSON.
func Write(m *Manifest) error {
	data, err := json.Marshal(m.Fields)
	if err != nil {
		return &Error{Path: m.Path, Kind: WriteFailed, Err: err}
	}
	mode := m.mode
	if mode == 0 {
		mode = 0o644
	}
	if err := fileutil.WriteFileAtomic(m.Path, data, mode); err != nil {
		return &Error{Path: m.Path, Kind: WriteFailed, Err: err}
	}
	return nil
}
