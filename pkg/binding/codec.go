package binding

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidList is returned when persisted data is not a configuration list.
var ErrInvalidList = errors.New("invalid configuration list")

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "keyreach://schema/config-list.json"

var (
	listSchema     *jsonschema.Schema
	listSchemaErr  error
	listSchemaOnce sync.Once
)

func compiledSchema() (*jsonschema.Schema, error) {
	listSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			listSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		listSchema, listSchemaErr = compiler.Compile(schemaURL)
	})
	return listSchema, listSchemaErr
}

// Decode validates raw against the list schema and decodes it. Empty input
// and JSON null decode to an empty list.
func Decode(raw []byte) (List, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return List{}, nil
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
	}

	var list List
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
	}
	if list == nil {
		list = List{}
	}
	return list, nil
}

// Encode serializes l for storage. A nil list encodes as an empty array.
func Encode(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration list: %w", err)
	}
	return data, nil
}
