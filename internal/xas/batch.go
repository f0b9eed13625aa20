package xas

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// SortingKey is the last run of digits in a file name.
func SortingKey(name string) (int, bool) {
	runs := digitsPattern.FindAllString(name, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(runs[len(runs)-1])
	return n, err == nil
}

// BatchFile is one file of a batch with its zero-padded output key.
type BatchFile struct {
	Key  string
	Path string
}

// BatchFiles lists every regular file under root. Directories are visited
// in path order; within a directory files are ordered by SortingKey, or by
// name when any file has no number. Keys count from 0 and are padded to the
// digit count of the total.
func BatchFiles(root string) ([]BatchFile, error) {
	dirs := map[string][]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, ok := dirs[path]; !ok {
				dirs[path] = nil
			}
			return nil
		}
		dir := filepath.Dir(path)
		dirs[dir] = append(dirs[dir], d.Name())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", root, err)
	}

	order := make([]string, 0, len(dirs))
	total := 0
	for dir, names := range dirs {
		order = append(order, dir)
		total += len(names)
	}
	sort.Strings(order)

	width := len(strconv.Itoa(total))
	var files []BatchFile
	for _, dir := range order {
		names := dirs[dir]
		sortNames(dir, names)
		for _, name := range names {
			files = append(files, BatchFile{
				Key:  fmt.Sprintf("%0*d", width, len(files)),
				Path: filepath.Join(dir, name),
			})
		}
	}
	return files, nil
}

func sortNames(dir string, names []string) {
	for _, name := range names {
		if _, ok := SortingKey(name); !ok {
			slog.Warn("unable to sort files numerically, sorting alphabetically",
				"dir", dir, "file", name)
			sort.Strings(names)
			return
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, _ := SortingKey(names[i])
		b, _ := SortingKey(names[j])
		return a < b
	})
}

// Extract unpacks a zip archive into dir. Entries that would land outside
// dir are rejected.
func Extract(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("extract %s: %w", archive, err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		target := filepath.Join(root, f.Name)
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("extract %s: illegal entry %q", archive, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", archive, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, rc)
	return err
}

// Archive zips the named directories under base into path, entry names
// relative to base. Missing directories are skipped.
func Archive(path, base string, dirs ...string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	for _, dir := range dirs {
		root := filepath.Join(base, dir)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(base, p)
			if err != nil {
				return err
			}
			w, err := zw.Create(filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			in, err := os.Open(p)
			if err != nil {
				return err
			}
			defer in.Close()
			_, err = io.Copy(w, in)
			return err
		})
		if err != nil {
			return fmt.Errorf("archive %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}
