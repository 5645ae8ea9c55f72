/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/my-own-web-services/filez/internal/system/log"
)

// SecretFileMode is the permission mode for secrets files: owner read/write
// only. Group and other bits are always cleared so credentials are never
// world-readable.
const SecretFileMode os.FileMode = 0o600

// tempFilePrefix marks the sibling temp files used by atomic writes.
const tempFilePrefix = ".secrets-tmp-"

var (
	// ErrKeyNotFound is returned when a targeted regenerate names a key the
	// file does not contain.
	ErrKeyNotFound = errors.New("key not found in secrets file")
	// ErrNoKeys is returned when a full regenerate finds no data lines at all.
	ErrNoKeys = errors.New("no keys found in secrets file")
)

// WriteSecretFile writes the content to the given path with owner-only
// permissions. The write is atomic in the observable sense: the content is
// written to a sibling temp file created with the restricted mode, synced, and
// renamed over the target, so readers see either the old or the new content.
//
// Permissions are set at creation time; setting them after writing would leave
// a window where the file exists with default permissions.
func WriteSecretFile(path, content string) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dir := filepath.Dir(path)
	cleanupOrphanTempFiles(dir, logger)

	tempFile, err := os.CreateTemp(dir, tempFilePrefix+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in '%s': %w", dir, err)
	}
	tempPath := tempFile.Name()

	removeTemp := func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warn("Failed to remove temp file", log.String("path", tempPath), log.Error(removeErr))
		}
	}

	if err := tempFile.Chmod(SecretFileMode); err != nil {
		_ = tempFile.Close()
		removeTemp()
		return fmt.Errorf("failed to set permissions on '%s': %w", tempPath, err)
	}
	if _, err := tempFile.WriteString(content); err != nil {
		_ = tempFile.Close()
		removeTemp()
		return fmt.Errorf("failed to write to '%s': %w", tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		removeTemp()
		return fmt.Errorf("failed to sync '%s': %w", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		removeTemp()
		return fmt.Errorf("failed to close '%s': %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		removeTemp()
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}

	return nil
}

// cleanupOrphanTempFiles removes temp files a previously aborted write may
// have left behind. Best-effort: failures are logged, never propagated.
func cleanupOrphanTempFiles(dir string, logger *log.Logger) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasPrefix(dirEntry.Name(), tempFilePrefix) {
			continue
		}
		orphanPath := filepath.Join(dir, dirEntry.Name())
		if err := os.Remove(orphanPath); err != nil {
			logger.Warn("Failed to remove orphan temp file", log.String("path", orphanPath), log.Error(err))
		}
	}
}

// ClearSecretValues blanks the value of the named key, or of every data line
// when key is empty, and writes the result back atomically. It returns the
// number of cleared lines. The renderer regenerates blank values on its next
// run, which is how individual secrets are rotated.
func ClearSecretValues(ctx context.Context, path, key string) (int, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	_, span := otel.Tracer("filez/secrets").Start(ctx, "secrets.ClearSecretValues")
	defer span.End()

	content, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return 0, fmt.Errorf("failed to read secrets file '%s': %w", path, err)
	}

	clearedCount := 0
	lines := make([]string, 0)
	for _, entry := range ParseEnvFileOrdered(string(content)) {
		switch {
		case entry.HasValue && (key == "" || key == entry.Key):
			clearedCount++
			lines = append(lines, entry.Key+"=")
		case entry.HasValue:
			lines = append(lines, entry.Key+"="+entry.RawValue)
		default:
			lines = append(lines, entry.Key)
		}
	}

	if clearedCount == 0 {
		if key != "" {
			return 0, fmt.Errorf("%w: '%s'", ErrKeyNotFound, key)
		}
		return 0, ErrNoKeys
	}

	newContent := strings.Join(lines, "\n")
	if strings.HasSuffix(string(content), "\n") {
		newContent += "\n"
	}
	if err := WriteSecretFile(path, newContent); err != nil {
		return 0, err
	}

	logger.Debug("Cleared secret values", log.String("path", path), log.Int("count", clearedCount))
	return clearedCount, nil
}

// LoadSecretsAsMap reads the secrets file into a key-value map with decoded
// values. A missing file yields an empty map, matching a deployment that has
// not rendered yet.
func LoadSecretsAsMap(path string) (map[string]string, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	content, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Secrets file does not exist", log.String("path", path))
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read secrets file '%s': %w", path, err)
	}

	values := make(map[string]string)
	for _, entry := range ParseEnvFileOrdered(string(content)) {
		if entry.HasValue {
			values[entry.Key] = entry.Value
		}
	}

	return values, nil
}
