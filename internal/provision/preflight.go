package provision

import (
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/fleet-ctl/internal/environment"
	"github.com/firefly-engineering/fleet-ctl/internal/errors"
	"github.com/firefly-engineering/fleet-ctl/internal/system"
)

// LauncherPath resolves the launcher script name inside scriptsDir. The
// result never escapes scriptsDir, even through symlinks.
func LauncherPath(scriptsDir, name string) (string, error) {
	path, err := securejoin.SecureJoin(scriptsDir, name)
	if err != nil {
		return "", errors.LauncherNotFound(name, err)
	}
	return path, nil
}

// BaseEnv returns the environment every launcher inherits: the given
// process environment plus SCRIPTS pointing at scriptsDir.
func BaseEnv(processEnv []string, scriptsDir string) []string {
	env := make([]string, 0, len(processEnv)+1)
	for _, kv := range processEnv {
		if strings.HasPrefix(kv, environment.VarScripts+"=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, environment.VarScripts+"="+scriptsDir)
}

// Preflight checks that the launcher script and the configuration document
// exist before anything is resolved or launched.
func Preflight(fs system.FileSystem, launcherPath, configPath string) error {
	if !fs.IsFile(launcherPath) {
		return errors.LauncherNotFound(launcherPath, nil)
	}
	if !fs.IsFile(configPath) {
		return errors.ConfigNotFound(configPath)
	}
	return nil
}
