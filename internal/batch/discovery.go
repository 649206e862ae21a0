package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/scalevision/scaleread/internal/utils"
)

// discoverImageFiles expands the given files and directories into a sorted
// list of supported image paths. Directory entries are sorted so batch order
// is stable across filesystems.
func discoverImageFiles(args []string, recursive bool) ([]string, error) {
	var imageFiles []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive)
			if err != nil {
				return nil, err
			}
			imageFiles = append(imageFiles, files...)
			continue
		}
		if utils.IsSupportedImage(arg) {
			imageFiles = append(imageFiles, arg)
		}
	}
	return imageFiles, nil
}

func discoverInDirectory(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if utils.IsSupportedImage(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
