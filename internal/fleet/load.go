package fleet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"sigs.k8s.io/yaml"

	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// Load reads the fleet configuration document at path.
//
// JSON documents may contain comments and trailing commas. Files ending in
// .yaml or .yml are read as YAML. The top level must be an array of
// objects, and non-empty ids must be unique.
func Load(fsys system.FileSystem, path string) ([]ContainerSpec, error) {
	if !fsys.IsFile(path) {
		return nil, errors.ConfigNotFound(path)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindConfigNotFound, fmt.Sprintf("failed to read %s", path), err)
	}

	return Parse(data, path)
}

// Parse decodes a configuration document. name selects the syntax by its
// extension and appears in error messages.
func Parse(data []byte, name string) ([]ContainerSpec, error) {
	standard, err := standardize(data, name)
	if err != nil {
		return nil, errors.ParseError(name, err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(standard, &elements); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, errors.ParseError(name, err)
		}
		return nil, errors.ShapeError("the devcontainers configuration is not a list")
	}
	if elements == nil {
		// a literal null decodes into a nil slice
		return nil, errors.ShapeError("the devcontainers configuration is not a list")
	}

	specs := make([]ContainerSpec, 0, len(elements))
	seen := make(map[string]int, len(elements))
	for i, raw := range elements {
		if !isObject(raw) {
			return nil, errors.ShapeError(fmt.Sprintf("devcontainer #%d is not an object", i+1))
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		var spec ContainerSpec
		if err := dec.Decode(&spec); err != nil {
			return nil, errors.Wrap(errors.KindShapeError, fmt.Sprintf("devcontainer #%d has an invalid field", i+1), err)
		}

		if spec.ID != "" {
			if first, dup := seen[spec.ID]; dup {
				return nil, errors.ShapeError(fmt.Sprintf("duplicate devcontainer id %q (entries #%d and #%d)", spec.ID, first+1, i+1))
			}
			seen[spec.ID] = i
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

func standardize(data []byte, name string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.YAMLToJSON(data)
	default:
		return hujson.Standardize(data)
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
