package site

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// File is one gathered input file. Nothing is read until a step needs it.
type File struct {
	// Path is the OS path of the file.
	Path string
	// Rel is the slash-separated path relative to the input root.
	Rel string
}

// Gather lists every regular file below root in lexical order.
func Gather(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{Path: path, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gather %s: %w", root, err)
	}
	return files, nil
}
