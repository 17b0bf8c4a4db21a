// Package bootstrap prepares freshly created worktrees: it detects the
// project's toolchain and links heavyweight dependency directories from the
// main checkout so the worktree is usable without a full reinstall.
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
)

// Ecosystem identifies a detected project toolchain.
type Ecosystem string

const (
	EcosystemNode   Ecosystem = "node"
	EcosystemPython Ecosystem = "python"
	EcosystemGo     Ecosystem = "go"
	EcosystemRust   Ecosystem = "rust"
)

// Env describes one detected environment in a checkout.
type Env struct {
	Ecosystem Ecosystem `json:"ecosystem"`
	// Tool is the package manager inferred from lockfiles.
	Tool string `json:"tool"`
	// LinkDir is the dependency directory to symlink into worktrees,
	// empty when the ecosystem keeps dependencies in a global cache.
	LinkDir string `json:"link_dir,omitempty"`
}

// Detect inspects a checkout and reports its environments. A repository can
// hold several, a Node frontend next to a Python service for instance.
func Detect(dir string) []Env {
	var envs []Env

	if exists(dir, "package.json") {
		envs = append(envs, Env{
			Ecosystem: EcosystemNode,
			Tool:      nodeTool(dir),
			LinkDir:   "node_modules",
		})
	}

	if py, ok := pythonTool(dir); ok {
		envs = append(envs, Env{
			Ecosystem: EcosystemPython,
			Tool:      py,
			LinkDir:   ".venv",
		})
	}

	if exists(dir, "go.mod") {
		envs = append(envs, Env{Ecosystem: EcosystemGo, Tool: "go"})
	}
	if exists(dir, "Cargo.toml") {
		envs = append(envs, Env{Ecosystem: EcosystemRust, Tool: "cargo"})
	}

	return envs
}

func nodeTool(dir string) string {
	switch {
	case exists(dir, "pnpm-lock.yaml"):
		return "pnpm"
	case exists(dir, "yarn.lock"):
		return "yarn"
	case exists(dir, "bun.lockb"), exists(dir, "bun.lock"):
		return "bun"
	default:
		return "npm"
	}
}

func pythonTool(dir string) (string, bool) {
	switch {
	case exists(dir, "uv.lock"):
		return "uv", true
	case exists(dir, "poetry.lock"):
		return "poetry", true
	case exists(dir, "Pipfile"):
		return "pipenv", true
	case exists(dir, "pyproject.toml"), exists(dir, "requirements.txt"), exists(dir, "setup.py"):
		return "pip", true
	}
	return "", false
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// LinkResult records one bootstrap action.
type LinkResult struct {
	Env    Env    `json:"env"`
	Target string `json:"target,omitempty"`
	Linked bool   `json:"linked"`
	Reason string `json:"reason,omitempty"`
}

// Bootstrap links each detected environment's dependency directory from
// mainDir into worktreeDir. Environments with global caches need no work.
// Missing source directories are reported, not treated as errors.
func Bootstrap(mainDir, worktreeDir string) ([]LinkResult, error) {
	envs := Detect(mainDir)
	results := make([]LinkResult, 0, len(envs))

	for _, env := range envs {
		result := LinkResult{Env: env}

		if env.LinkDir == "" {
			result.Reason = "uses a global dependency cache"
			results = append(results, result)
			continue
		}

		src := filepath.Join(mainDir, env.LinkDir)
		if _, err := os.Stat(src); err != nil {
			result.Reason = fmt.Sprintf("%s not present in main checkout", env.LinkDir)
			results = append(results, result)
			continue
		}

		dst := filepath.Join(worktreeDir, env.LinkDir)
		if _, err := os.Lstat(dst); err == nil {
			result.Reason = fmt.Sprintf("%s already exists in worktree", env.LinkDir)
			results = append(results, result)
			continue
		}

		if err := os.Symlink(src, dst); err != nil {
			return results, fmt.Errorf("failed to link %s: %w", env.LinkDir, err)
		}
		result.Target = dst
		result.Linked = true
		results = append(results, result)
	}

	return results, nil
}
