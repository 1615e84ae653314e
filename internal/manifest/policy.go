package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlagPolicy controls how the encryption flags are cleared.
type FlagPolicy int

const (
	// FlagsRemove deletes hasEncryptedAudio and hasEncryptedImages.
	FlagsRemove FlagPolicy = iota
	// FlagsFalse keeps both fields and sets them to false.
	FlagsFalse
)

// ParseFlagPolicy maps the config spelling to a FlagPolicy.
func ParseFlagPolicy(value string) (FlagPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "remove":
		return FlagsRemove, nil
	case "false":
		return FlagsFalse, nil
	default:
		return FlagsRemove, fmt.Errorf("unsupported flag policy %q (want remove or false)", value)
	}
}

func (p FlagPolicy) String() string {
	if p == FlagsFalse {
		return "false"
	}
	return "remove"
}

// Policy describes the edits applied once assets are decrypted.
type Policy struct {
	Flags    FlagPolicy
	StripKey bool
}

var falseJSON = json.RawMessage("false")

// MarkDecrypted clears the encryption flags, and the key when StripKey is set.
// No I/O.
func MarkDecrypted(m *Manifest, policy Policy) {
	if m.Fields == nil {
		m.Fields = map[string]json.RawMessage{}
	}
	for _, field := range []string{FieldHasEncryptedAudio, FieldHasEncryptedImages} {
		switch policy.Flags {
		case FlagsFalse:
			m.Fields[field] = falseJSON
		default:
			delete(m.Fields, field)
		}
	}
	if policy.StripKey {
		delete(m.Fields, FieldEncryptionKey)
	}
}
