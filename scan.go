package main

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

type ImagePath struct {
	Path        string // Local file path or archive:entry format
	ArchivePath string // Empty for regular files, path to archive for entries
	EntryPath   string // Empty for regular files, path within archive for entries
}

// Name returns the base name shown in the title bar.
func (p ImagePath) Name() string {
	if p.EntryPath != "" {
		return filepath.Base(p.EntryPath)
	}
	return filepath.Base(p.Path)
}

// ImageFormat is the format tag derived from a file extension.
type ImageFormat string

const (
	FormatUnknown ImageFormat = ""
	FormatJPEG    ImageFormat = "JPEG"
	FormatPNG     ImageFormat = "PNG"
	FormatGIF     ImageFormat = "GIF"
	FormatBMP     ImageFormat = "BMP"
	FormatWebP    ImageFormat = "WebP"
)

var supportedFormats = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
}

// supportedFormatList is used in user-facing messages.
const supportedFormatList = "JPEG, PNG, GIF, BMP, WebP"

func formatOf(path string) ImageFormat {
	return supportedFormats[strings.ToLower(filepath.Ext(path))]
}

func isSupportedExt(path string) bool {
	return formatOf(path) != FormatUnknown
}

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

// ScanResult is the ordered image list plus the index to open first.
type ScanResult struct {
	Source string // directory or archive the images came from
	Paths  []ImagePath
	Start  int
}

// collectImages enumerates the images to view for a command line argument.
// An empty argument means the current directory. A directory yields the
// images directly inside it, an archive its image entries, and a single
// image the images of its directory starting at that file.
func collectImages(arg string, sortMethod int) (ScanResult, error) {
	if arg == "" {
		arg = "."
	}

	info, err := os.Stat(arg)
	if err != nil {
		return ScanResult{}, zerr.With(zerr.Wrap(err, ErrPathNotFound.Error()), "path", arg)
	}

	var result ScanResult
	switch {
	case info.IsDir():
		paths, err := scanDirectory(arg, sortMethod)
		if err != nil {
			return ScanResult{}, err
		}
		result = ScanResult{Source: arg, Paths: paths}
	case isArchiveExt(arg):
		entries, err := listArchive(arg)
		if err != nil {
			return ScanResult{}, err
		}
		result = ScanResult{Source: arg, Paths: GetSortStrategy(sortMethod).Sort(entries)}
	case isSupportedExt(arg):
		dir := filepath.Dir(arg)
		paths, err := scanDirectory(dir, sortMethod)
		if err != nil {
			return ScanResult{}, err
		}
		result = ScanResult{Source: dir, Paths: paths, Start: indexOfFile(paths, arg)}
	default:
		return ScanResult{}, zerr.With(ErrUnsupportedPath, "path", arg)
	}

	if len(result.Paths) == 0 {
		return ScanResult{}, zerr.With(zerr.With(ErrNoImages, "path", arg), "formats", supportedFormatList)
	}

	debugLog("Collected %d images from %s (start %d)", len(result.Paths), result.Source, result.Start)
	return result, nil
}

// scanDirectory lists supported images directly inside dir. Subdirectories,
// hidden files and archives are skipped.
func scanDirectory(dir string, sortMethod int) ([]ImagePath, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrReadDirFailed.Error()), "dir", dir)
	}

	var images []ImagePath
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		fullPath := filepath.Join(dir, name)
		if entry.Type()&os.ModeSymlink != 0 {
			// Follow links, but only to regular files
			info, err := os.Stat(fullPath)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}

		if isSupportedExt(name) {
			images = append(images, ImagePath{Path: fullPath})
		}
	}

	return GetSortStrategy(sortMethod).Sort(images), nil
}

// indexOfFile finds target in paths, comparing cleaned absolute paths.
func indexOfFile(paths []ImagePath, target string) int {
	want, err := filepath.Abs(target)
	if err != nil {
		want = filepath.Clean(target)
	}
	for i, p := range paths {
		got, err := filepath.Abs(p.Path)
		if err != nil {
			got = filepath.Clean(p.Path)
		}
		if got == want {
			return i
		}
	}
	return 0
}
