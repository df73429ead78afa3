package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Create writes a zip archive at dest containing the files under srcDir.
// Entry names are relative to srcDir, so the directory prefix is stripped
// from the archive layout. Any entry whose relative path, base name, or a
// leading directory matches one of the exclude globs is skipped; a matching
// directory excludes its whole subtree.
func Create(srcDir, dest string, excludes []string) error {
	out, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	writer := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		name := filepath.ToSlash(rel)
		if excluded(name, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		return addFile(writer, p, name)
	})

	if walkErr != nil {
		_ = writer.Close()
		_ = out.Close()
		_ = os.Remove(dest)

		return fmt.Errorf("archive %s: %w", srcDir, walkErr)
	}

	if err := writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}

	return out.Close()
}

// Append adds the given files to an existing archive at dest. File paths are
// resolved relative to baseDir and stored under their base-relative names.
// Existing entries are preserved.
//
// The zip format has no in-place append, so the archive is rewritten to a
// temporary file next to dest and renamed over it on success.
func Append(dest, baseDir string, files []string) error {
	reader, err := zip.OpenReader(dest)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*")
	if err != nil {
		_ = reader.Close()
		return fmt.Errorf("create temporary archive: %w", err)
	}

	tmpName := tmp.Name()
	writer := zip.NewWriter(tmp)

	appendErr := func() error {
		// Carry over existing entries without recompressing.
		for _, entry := range reader.File {
			if err := writer.Copy(entry); err != nil {
				return fmt.Errorf("copy entry %s: %w", entry.Name, err)
			}
		}

		for _, file := range files {
			src := file
			if !filepath.IsAbs(src) {
				src = filepath.Join(baseDir, src)
			}

			if err := addFile(writer, src, filepath.ToSlash(file)); err != nil {
				return err
			}
		}

		return nil
	}()

	_ = reader.Close()

	if appendErr != nil {
		_ = writer.Close()
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return appendErr
	}

	if err := writer.Close(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("finalize archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, dest)
}

// Contains reports whether the archive at dest has an entry with the given name.
func Contains(dest, name string) (bool, error) {
	reader, err := zip.OpenReader(dest)
	if err != nil {
		return false, err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if entry.Name == name {
			return true, nil
		}
	}

	return false, nil
}

// addFile writes a single file into the archive under the given entry name.
func addFile(writer *zip.Writer, src, name string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header for %s: %w", src, err)
	}

	header.Name = name
	header.Method = zip.Deflate

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	return nil
}

// excluded reports whether the slash-separated relative path matches any of
// the exclude globs, either by full path or by base name. Directories are
// checked through here too, so a matching directory name excludes its whole
// subtree via the SkipDir handling in Create.
func excluded(name string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}

		if ok, _ := path.Match(pattern, path.Base(name)); ok {
			return true
		}
	}

	return false
}
