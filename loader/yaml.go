package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// LoadYAML decodes one YAML content document. Unknown keys are errors. A
// balance block starts from the default constants, so a document only
// needs to name the values it changes.
func LoadYAML(data []byte) (*types.GameConfig, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &types.GameConfig{}, nil
		}
		return nil, err
	}

	cfg := &types.GameConfig{}
	strict := yaml.NewDecoder(bytes.NewReader(data))
	strict.KnownFields(true)
	if err := strict.Decode(cfg); err != nil {
		return nil, err
	}

	if bal := mappingValue(&doc, "balance"); bal != nil {
		b := state.DefaultBalance()
		if err := bal.Decode(&b); err != nil {
			return nil, fmt.Errorf("balance: %w", err)
		}
		cfg.Balance = &b
	}
	return cfg, nil
}

// mappingValue returns the value node under key in a document's top-level
// mapping, or nil.
func mappingValue(doc *yaml.Node, key string) *yaml.Node {
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
