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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// Archive packs the reports directory into tar.xz stream, paths are relative to dir. The skip
// path is not packed, it's the archive itself when it's placed inside dir.
func Archive(dir string, w io.Writer, skip string) error {
	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("report: unable to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skip != "" && path == skip {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("report: unable to archive %q: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("report: unable to finish tar: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("report: unable to finish xz: %w", err)
	}
	return nil
}

// WriteArchive creates the tar.xz file with the reports directory content
func WriteArchive(dir, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: unable to create archive dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: unable to create archive: %w", err)
	}
	// Both are absolute to detect the archive placed in the packed directory
	absDir, err := filepath.Abs(dir)
	if err != nil {
		f.Close()
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		f.Close()
		return err
	}
	if err := Archive(absDir, f, absPath); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
