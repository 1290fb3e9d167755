package main

import "go.trai.ch/zerr"

var (
	// ErrPathNotFound is returned when the path given on the command line does not exist.
	ErrPathNotFound = zerr.New("path not found")

	// ErrUnsupportedPath is returned when the path is neither a directory, an archive nor an image.
	ErrUnsupportedPath = zerr.New("path is not a directory, archive or supported image")

	// ErrNoImages is returned when a scan finds no supported images.
	ErrNoImages = zerr.New("no supported images found")

	// ErrReadDirFailed is returned when a directory cannot be listed.
	ErrReadDirFailed = zerr.New("failed to read directory")

	// ErrArchiveFailed is returned when an archive cannot be opened or listed.
	ErrArchiveFailed = zerr.New("failed to read archive")

	// ErrEntryNotFound is returned when an archive entry disappeared after the scan.
	ErrEntryNotFound = zerr.New("archive entry not found")

	// ErrUnsupportedArchive is returned for archive extensions without a reader.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrReadFailed is returned when image bytes cannot be read.
	ErrReadFailed = zerr.New("failed to read image")

	// ErrDecodeFailed is returned when image bytes cannot be decoded.
	ErrDecodeFailed = zerr.New("failed to decode image")

	// ErrImageTooLarge is recorded on a slot whose decode can never fit in the memory budget.
	ErrImageTooLarge = zerr.New("image exceeds memory budget")

	// ErrConfigRead is returned when the config file exists but cannot be read.
	ErrConfigRead = zerr.New("failed to read config file")

	// ErrConfigParse is returned when the config file is not valid YAML.
	ErrConfigParse = zerr.New("failed to parse config file")

	// ErrInvalidKeybinding is returned when a keybinding names an unknown key or modifier.
	ErrInvalidKeybinding = zerr.New("invalid keybinding")

	// ErrKeybindingConflict is returned when one key is bound to two actions.
	ErrKeybindingConflict = zerr.New("keybinding conflict")
)
