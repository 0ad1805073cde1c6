package persistence

import (
	"bytes"
	"encoding/gob"

	"github.com/petrijr/workflows/pkg/api"
)

func init() {
	// Extension data is map[string]any; gob needs the concrete container
	// types nested inside it registered up front. Scalars and []string are
	// registered by gob itself.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// EncodeDefinition serializes a definition using encoding/gob.
// Values stored in extension data must be gob-encodable; custom types need
// gob.Register before use.
func EncodeDefinition(def api.Definition) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&def); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDefinition is the inverse of EncodeDefinition.
func DecodeDefinition(data []byte) (api.Definition, error) {
	var def api.Definition
	if len(data) == 0 {
		return def, ErrDefinitionNotFound
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&def); err != nil {
		return api.Definition{}, err
	}
	return def, nil
}
