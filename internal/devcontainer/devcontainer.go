// Package devcontainer edits a workspace's devcontainer.json in place,
// keeping its comments and trailing commas.
package devcontainer

import (
	"encoding/json"
	"fmt"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/tailscale/hujson"

	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// SSHFeatureID is the devcontainer feature that installs an SSH server.
const SSHFeatureID = "ghcr.io/devcontainers/features/sshd:1"

// DefaultPath is the devcontainer.json location inside a workspace.
const DefaultPath = ".devcontainer/devcontainer.json"

// Path resolves rel inside workspace without letting it escape. An empty
// rel selects DefaultPath.
func Path(workspace, rel string) (string, error) {
	if rel == "" {
		rel = DefaultPath
	}
	return securejoin.SecureJoin(workspace, rel)
}

// pointer escapes a key for use as a JSON Pointer reference token.
func pointer(key string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(key)
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// AddFeature adds feature with empty options to a devcontainer.json
// document. It returns the document unchanged and false when the feature
// is already present.
func AddFeature(data []byte, feature string) ([]byte, bool, error) {
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, false, err
	}
	if _, ok := v.Value.(*hujson.Object); !ok {
		return nil, false, fmt.Errorf("top-level value is not an object")
	}

	featurePtr := "/features/" + pointer(feature)
	if v.Find(featurePtr) != nil {
		return data, false, nil
	}

	var op patchOp
	if features := v.Find("/features"); features == nil {
		op = patchOp{Op: "add", Path: "/features", Value: map[string]any{feature: map[string]any{}}}
	} else if _, ok := features.Value.(*hujson.Object); !ok {
		return nil, false, fmt.Errorf("features is not an object")
	} else {
		op = patchOp{Op: "add", Path: featurePtr, Value: map[string]any{}}
	}

	patch, err := json.Marshal([]patchOp{op})
	if err != nil {
		return nil, false, err
	}
	if err := v.Patch(patch); err != nil {
		return nil, false, fmt.Errorf("failed to add feature %s: %w", feature, err)
	}
	v.Format()
	return v.Pack(), true, nil
}

// EnsureSSHFeature adds the sshd feature to the devcontainer.json found at
// rel inside workspace. It reports the file path and whether it changed.
func EnsureSSHFeature(fsys system.FileSystem, workspace, rel string) (string, bool, error) {
	path, err := Path(workspace, rel)
	if err != nil {
		return "", false, errors.Wrap(errors.KindConfigNotFound, "invalid devcontainer path", err)
	}
	if !fsys.IsFile(path) {
		return path, false, errors.New(errors.KindConfigNotFound, fmt.Sprintf("'%s' not found", path))
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return path, false, errors.Wrap(errors.KindGeneral, "failed to read devcontainer.json", err)
	}

	updated, changed, err := AddFeature(data, SSHFeatureID)
	if err != nil {
		return path, false, errors.ParseError(path, err)
	}
	if !changed {
		return path, false, nil
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return path, false, errors.Wrap(errors.KindGeneral, "failed to stat devcontainer.json", err)
	}
	if err := fsys.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return path, false, errors.Wrap(errors.KindGeneral, "failed to write devcontainer.json", err)
	}
	return path, true, nil
}
