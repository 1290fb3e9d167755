package main

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
	"go.trai.ch/zerr"
)

// archiveReader lists and extracts image entries of one archive format.
type archiveReader interface {
	List(archivePath string) ([]string, error)
	Read(archivePath, entryPath string) ([]byte, error)
}

func archiveReaderFor(archivePath string) (archiveReader, error) {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return zipReader{}, nil
	case ".rar":
		return rarReader{}, nil
	case ".7z":
		return sevenZipReader{}, nil
	default:
		return nil, zerr.With(ErrUnsupportedArchive, "archive", archivePath)
	}
}

// listArchive returns the image entries of an archive in archive order.
func listArchive(archivePath string) ([]ImagePath, error) {
	reader, err := archiveReaderFor(archivePath)
	if err != nil {
		return nil, err
	}

	names, err := reader.List(archivePath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrArchiveFailed.Error()), "archive", archivePath)
	}

	images := make([]ImagePath, 0, len(names))
	for _, name := range names {
		if !isImageEntry(name) {
			continue
		}
		images = append(images, ImagePath{
			Path:        archivePath + ":" + name,
			ArchivePath: archivePath,
			EntryPath:   name,
		})
	}
	debugLog("Archive %s: %d of %d entries are images", archivePath, len(images), len(names))
	return images, nil
}

// readArchiveEntry extracts a single entry from an archive.
func readArchiveEntry(archivePath, entryPath string) ([]byte, error) {
	reader, err := archiveReaderFor(archivePath)
	if err != nil {
		return nil, err
	}
	data, err := reader.Read(archivePath, entryPath)
	if err != nil {
		if errors.Is(err, errEntryMissing) {
			return nil, zerr.With(zerr.With(ErrEntryNotFound, "archive", archivePath), "entry", entryPath)
		}
		return nil, zerr.With(zerr.Wrap(err, ErrArchiveFailed.Error()), "entry", entryPath)
	}
	return data, nil
}

// isImageEntry skips directories, hidden files and macOS resource forks.
func isImageEntry(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	for _, part := range strings.Split(path.Clean(filepath.ToSlash(name)), "/") {
		if strings.HasPrefix(part, ".") || part == "__MACOSX" {
			return false
		}
	}
	return isSupportedExt(name)
}

var errEntryMissing = errors.New("entry missing")

type zipReader struct{}

func (zipReader) List(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (zipReader) Read(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errEntryMissing
}

// rarReader walks the archive sequentially, rardecode has no random access.
type rarReader struct{}

func (rarReader) walk(archivePath string, visit func(header *rardecode.FileHeader, r io.Reader) (bool, error)) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := visit(header, r)
		if err != nil || done {
			return err
		}
	}
}

func (rr rarReader) List(archivePath string) ([]string, error) {
	var names []string
	err := rr.walk(archivePath, func(header *rardecode.FileHeader, _ io.Reader) (bool, error) {
		if !header.IsDir {
			names = append(names, header.Name)
		}
		return false, nil
	})
	return names, err
}

func (rr rarReader) Read(archivePath, entryPath string) ([]byte, error) {
	var data []byte
	found := false
	err := rr.walk(archivePath, func(header *rardecode.FileHeader, r io.Reader) (bool, error) {
		if header.Name != entryPath {
			return false, nil
		}
		found = true
		var err error
		data, err = io.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errEntryMissing
	}
	return data, nil
}

type sevenZipReader struct{}

func (sevenZipReader) List(archivePath string) ([]string, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (sevenZipReader) Read(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errEntryMissing
}
