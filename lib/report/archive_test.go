/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

package report

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	xzr, err := xz.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(xzr)

	out := map[string]string{}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = string(data)
	}
	return out
}

func Test_write_archive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "captures", "traces"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.html"), []byte("<html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "captures", "traces", "TestLogin.zip"), []byte("zip"), 0o644))

	// The archive is placed into the packed directory and should not include itself
	out := filepath.Join(dir, "reports.tar.xz")
	require.NoError(t, WriteArchive(dir, out))

	files := readArchive(t, out)
	assert.Equal(t, "<html>", files["report.html"])
	assert.Equal(t, "zip", files["captures/traces/TestLogin.zip"])
	assert.Contains(t, files, "captures/")
	assert.NotContains(t, files, "reports.tar.xz")
}

func Test_archive_missing_dir(t *testing.T) {
	err := WriteArchive(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out.tar.xz"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
