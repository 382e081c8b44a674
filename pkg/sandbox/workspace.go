package sandbox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// validateRelativePath rejects absolute paths and any ".." traversal
// component, matching the request-validation invariant every script name,
// file path, and expected-output path must satisfy.
func validateRelativePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", rerrors.ErrInputValidation)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%w: absolute path %q not allowed", rerrors.ErrInputValidation, p)
	}
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path traversal in %q", rerrors.ErrInputValidation, p)
		}
	}
	return nil
}

// validateRequest checks the full set of path invariants plus the
// non-empty-script invariant described in the sandbox contract.
func validateRequest(req Request) error {
	if strings.TrimSpace(req.Script) == "" {
		return fmt.Errorf("%w: script contents must not be empty", rerrors.ErrInputValidation)
	}
	if req.ScriptName != "" {
		if err := validateRelativePath(req.ScriptName); err != nil {
			return err
		}
	}
	for _, f := range req.Files {
		if err := validateRelativePath(f.Path); err != nil {
			return err
		}
	}
	for _, o := range req.ExpectedOutputs {
		if err := validateRelativePath(o.Path); err != nil {
			return err
		}
	}
	return nil
}

// newWorkspaceName returns a random, filesystem-safe directory name.
func newWorkspaceName() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ws-" + hex.EncodeToString(buf), nil
}

// createWorkspace carves a fresh ephemeral directory under root and
// returns its path. The caller must arrange for removal on every exit
// path (normal, error, panic, or cancellation).
func createWorkspace(root string) (string, error) {
	name, err := newWorkspaceName()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}

// materializeFiles writes the script and every input file into workspace.
func materializeFiles(workspace, scriptName, script string, files []FileInput) error {
	scriptPath := filepath.Join(workspace, scriptName)
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(scriptPath, []byte(script), 0o640); err != nil {
		return err
	}
	for _, f := range files {
		full := filepath.Join(workspace, f.Path)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(full, f.Bytes, 0o640); err != nil {
			return err
		}
	}
	return nil
}

// harvestOutputs reads every expected output that exists under workspace.
// Missing files are skipped with a warning rather than failing the call.
func harvestOutputs(workspace string, expected []ExpectedOutput) []OutputArtifact {
	var out []OutputArtifact
	for _, exp := range expected {
		full := filepath.Join(workspace, exp.Path)
		data, err := os.ReadFile(full)
		if err != nil {
			slog.Warn("expected sandbox output not harvested", "path", exp.Path, "error", err)
			continue
		}
		out = append(out, OutputArtifact{Path: exp.Path, Kind: exp.Kind, Bytes: data})
	}
	return out
}
