// file: internal/converter/converter.go
// version: 1.0.0
// guid: 6e9b2d47-c1a0-4f83-b5d6-08e3f7a4c912

// Package converter drives the external tool that converts game CDB files
// to and from SQLite snapshots.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
)

// DefaultToolPath is where the exporter ships relative to the working directory.
var DefaultToolPath = filepath.Join("SQLiteExporter", "SQLiteExporter.exe")

// WorkingSnapshotName is the file an exported CDB is moved to in the work dir.
const WorkingSnapshotName = "pcm_working_db.sqlite"

// ErrToolNotFound is returned when the converter executable cannot be located.
var ErrToolNotFound = errors.New("converter tool not found")

// Converter runs the exporter tool.
type Converter struct {
	ToolPath string
	WorkDir  string
}

// New creates a converter. Empty arguments fall back to DefaultToolPath
// and the OS temp directory.
func New(toolPath, workDir string) *Converter {
	if toolPath == "" {
		toolPath = DefaultToolPath
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Converter{ToolPath: toolPath, WorkDir: workDir}
}

// Tool resolves the executable: an existing path first, then PATH lookup.
func (c *Converter) Tool() (string, error) {
	if info, err := os.Stat(c.ToolPath); err == nil && !info.IsDir() {
		return filepath.Abs(c.ToolPath)
	}
	if p, err := exec.LookPath(c.ToolPath); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, c.ToolPath)
}

// Export converts a CDB file into a SQLite snapshot. The tool writes the
// snapshot next to the CDB; it is then moved into the work directory,
// replacing any previous working snapshot. Returns the snapshot path.
func (c *Converter) Export(ctx context.Context, cdbPath string) (string, error) {
	absCDB, err := filepath.Abs(cdbPath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(absCDB); err != nil {
		return "", fmt.Errorf("cannot export %s: %w", cdbPath, err)
	}

	if err := c.run(ctx, "-export", absCDB); err != nil {
		return "", err
	}

	produced := swapExt(absCDB, ".sqlite")
	if !fileops.Exists(produced) {
		return "", fmt.Errorf("converter did not produce %s", produced)
	}

	working := filepath.Join(c.WorkDir, WorkingSnapshotName)
	if err := fileops.MoveFile(produced, working); err != nil {
		return "", fmt.Errorf("failed to move snapshot to %s: %w", working, err)
	}
	return working, nil
}

// Import converts a SQLite snapshot into targetCDB. The snapshot is copied
// next to the target as <base>.sqlite for the tool and removed afterwards.
func (c *Converter) Import(ctx context.Context, sqlitePath, targetCDB string) error {
	absTarget, err := filepath.Abs(targetCDB)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(absTarget, filepath.Ext(absTarget))
	staged := base + ".sqlite"

	if err := fileops.CopyFile(sqlitePath, staged); err != nil {
		return fmt.Errorf("failed to stage snapshot: %w", err)
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] failed to remove staged snapshot %s: %v", staged, err)
		}
	}()

	return c.run(ctx, "-import", base)
}

func (c *Converter) run(ctx context.Context, mode, target string) error {
	tool, err := c.Tool()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, tool, "-a", mode, target)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("converter %s failed: %w: %s", mode, err, msg)
		}
		return fmt.Errorf("converter %s failed: %w", mode, err)
	}
	return nil
}

func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
