// file: internal/fileops/copy.go
// version: 2.0.0
// guid: 8f7e6d5c-4b3a-2918-7f6e-5d4c3b2a1908

package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	ulid "github.com/oklog/ulid/v2"
)

// ErrChecksumMismatch is returned when a copy does not match its source.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// TempSibling returns a unique temporary path next to path, so a later
// rename onto path stays on the same filesystem.
func TempSibling(path string) string {
	return fmt.Sprintf("%s.%s.tmp", path, ulid.Make().String())
}

// CopyFile copies src to dst, creating the destination directory and
// overwriting an existing dst. The copy is synced and keeps src's mode.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	if err := destFile.Sync(); err != nil {
		return err
	}

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}
	return os.Chmod(dst, sourceInfo.Mode())
}

// VerifiedCopy copies src to dst and checks both SHA256 sums. On any
// failure dst is removed.
func VerifiedCopy(src, dst string) error {
	srcHash, err := ComputeFileHash(src)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", src, err)
	}
	if err := CopyFile(src, dst); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	dstHash, err := ComputeFileHash(dst)
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to hash %s: %w", dst, err)
	}
	if srcHash != dstHash {
		os.Remove(dst)
		return fmt.Errorf("%w: %s -> %s", ErrChecksumMismatch, src, dst)
	}
	return nil
}

// ReplaceFile atomically moves src onto dst, replacing any stale dst.
// Both paths must be on the same filesystem.
func ReplaceFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if err != nil && runtime.GOOS == "windows" && Exists(src) && Exists(dst) {
		// rename does not replace an existing file on windows
		if rmErr := os.Remove(dst); rmErr != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, rmErr)
		}
		err = os.Rename(src, dst)
	}
	return err
}

// MoveFile moves src to dst. When a rename is impossible because the paths
// are on different devices, the file is copied with verification and the
// source removed.
func MoveFile(src, dst string) error {
	err := ReplaceFile(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	tmp := TempSibling(dst)
	if err := VerifiedCopy(src, tmp); err != nil {
		return err
	}
	if err := ReplaceFile(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Remove(src); err != nil {
		log.Printf("[WARN] failed to remove %s after move: %v", src, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames
// it into place, so readers never see a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := TempSibling(path)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := ReplaceFile(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ComputeFileHash computes the SHA256 hash of a file
func ComputeFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
