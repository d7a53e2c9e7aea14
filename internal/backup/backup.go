// file: internal/backup/backup.go
// version: 2.0.0
// guid: 8f9e0a1b-2c3d-4e5f-6a7b-8c9d0e1f2a3b

// Package backup archives game database files before they are overwritten.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	"github.com/oklog/ulid/v2"
)

const archiveSuffix = ".tar.gz"

// BackupInfo contains information about a backup
type BackupInfo struct {
	Filename  string    `json:"filename" yaml:"filename"`
	Path      string    `json:"path" yaml:"path"`
	Source    string    `json:"source" yaml:"source"`
	Size      int64     `json:"size" yaml:"size"`
	Checksum  string    `json:"checksum" yaml:"checksum"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// BackupConfig holds backup configuration
type BackupConfig struct {
	BackupDir        string
	MaxBackups       int
	CompressionLevel int
}

// DefaultBackupConfig returns default backup configuration
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		BackupDir:        "backups",
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// CreateBackup writes a compressed archive of the file at path into the
// backup directory. Archive names are <stem>_<ulid>.tar.gz so they sort by
// creation time.
func CreateBackup(path string, config BackupConfig) (*BackupInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot back up directory %s", path)
	}

	if err := os.MkdirAll(config.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := ulid.Make()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	backupFilename := fmt.Sprintf("%s_%s%s", stem, id, archiveSuffix)
	backupPath := filepath.Join(config.BackupDir, backupFilename)

	if err := writeArchive(backupPath, path, info, config.CompressionLevel); err != nil {
		os.Remove(backupPath)
		return nil, err
	}

	fileInfo, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	checksum, err := fileops.ComputeFileHash(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	if config.MaxBackups > 0 {
		if err := cleanupOldBackups(config.BackupDir, config.MaxBackups); err != nil {
			log.Printf("[WARN] failed to clean up old backups: %v", err)
		}
	}

	return &BackupInfo{
		Filename:  backupFilename,
		Path:      backupPath,
		Source:    filepath.Base(path),
		Size:      fileInfo.Size(),
		Checksum:  checksum,
		CreatedAt: ulid.Time(id.Time()),
	}, nil
}

func writeArchive(backupPath, path string, info os.FileInfo, level int) error {
	backupFile, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer backupFile.Close()

	if level == 0 {
		level = gzip.DefaultCompression
	}
	gzipWriter, err := gzip.NewWriterLevel(backupFile, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	if err := addToArchive(tarWriter, path, info); err != nil {
		return fmt.Errorf("failed to add file to archive: %w", err)
	}

	// Close writers to ensure all data is flushed
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return backupFile.Close()
}

// RestoreBackup extracts a backup archive into targetDir.
func RestoreBackup(backupPath, targetDir string) error {
	backupFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer backupFile.Close()

	gzipReader, err := gzip.NewReader(backupFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			log.Printf("[WARN] skipping unsupported entry %s in %s", header.Name, backupPath)
			continue
		}

		name := filepath.Base(filepath.Clean(header.Name))
		if name == "." || name == ".." || name == string(filepath.Separator) {
			return fmt.Errorf("invalid entry name %q", header.Name)
		}
		target := filepath.Join(targetDir, name)

		tmp := fileops.TempSibling(target)
		if err := extractFile(tarReader, tmp, os.FileMode(header.Mode).Perm()); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		if err := fileops.ReplaceFile(tmp, target); err != nil {
			os.Remove(tmp)
			return err
		}
	}

	return nil
}

func extractFile(r io.Reader, path string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListBackups lists the backups in backupDir, oldest first.
func ListBackups(backupDir string) ([]BackupInfo, error) {
	var backups []BackupInfo

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil // No backups directory yet
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backupPath := filepath.Join(backupDir, entry.Name())
		checksum, _ := fileops.ComputeFileHash(backupPath)

		source, created := parseBackupName(entry.Name())
		if created.IsZero() {
			created = info.ModTime()
		}

		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			Path:      backupPath,
			Source:    source,
			Size:      info.Size(),
			Checksum:  checksum,
			CreatedAt: created,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.Before(backups[j].CreatedAt)
		}
		return backups[i].Filename < backups[j].Filename
	})
	return backups, nil
}

// parseBackupName splits <stem>_<ulid>.tar.gz. Unknown names return the
// bare name and a zero time.
func parseBackupName(name string) (string, time.Time) {
	base := strings.TrimSuffix(name, archiveSuffix)
	i := strings.LastIndex(base, "_")
	if i < 0 {
		return base, time.Time{}
	}
	id, err := ulid.ParseStrict(base[i+1:])
	if err != nil {
		return base, time.Time{}
	}
	return base[:i], ulid.Time(id.Time())
}

// DeleteBackup deletes a specific backup file
func DeleteBackup(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

func addToArchive(tarWriter *tar.Writer, path string, info os.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(tarWriter, file)
	return err
}

// cleanupOldBackups removes old backups exceeding the maximum count
func cleanupOldBackups(backupDir string, maxBackups int) error {
	backups, err := ListBackups(backupDir)
	if err != nil {
		return err
	}

	if len(backups) <= maxBackups {
		return nil
	}

	deleteCount := len(backups) - maxBackups
	for i := 0; i < deleteCount; i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			log.Printf("[WARN] failed to delete old backup %s: %v", backups[i].Filename, err)
		}
	}

	return nil
}
