// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package fetch

import "strings"

const (
	// maxFileSize caps individual files; anything larger carries no
	// reviewable signal and bloats the pack.
	maxFileSize = 500 * 1024

	// binarySniffLen is how far into a file the NUL-byte heuristic looks.
	binarySniffLen = 8 * 1024
)

// ignoredDirs are vendor, build and version-control directories excluded
// from the file set entirely.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".next":        true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"vendor":       true,
	"target":       true,
}

// ignoredExtensions cover binaries, media, lockfiles, minified bundles and
// other content with no executable security signal.
var ignoredExtensions = map[string]bool{
	// Images and media
	"png": true, "jpg": true, "jpeg": true, "gif": true, "ico": true,
	"svg": true, "mp4": true, "webm": true, "mp3": true, "wav": true,
	// Archives and binaries
	"zip": true, "tar": true, "gz": true, "7z": true, "rar": true,
	"exe": true, "dll": true, "so": true, "dylib": true, "bin": true,
	// Lockfiles
	"lock": true,
	// Documents and fonts
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true,
	"eot": true, "ttf": true, "woff": true, "woff2": true,
	// Generated
	"map": true, "css": true,
}

// ignoredSuffixes excludes generated files whose extension alone is not
// decisive.
var ignoredSuffixes = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	".min.js",
	".d.ts",
}

// osArtifacts are dotfiles with no content signal at all.
var osArtifacts = map[string]bool{
	".DS_Store": true,
	"Thumbs.db": true,
}

// shouldSkip applies the directory and extension denylists. Dotfiles are
// kept except OS artifacts; .gitignore and .env* files are explicitly kept
// since they are high-value signals.
func shouldSkip(path string) bool {
	parts := strings.Split(path, "/")
	filename := parts[len(parts)-1]

	for _, part := range parts {
		if ignoredDirs[part] {
			return true
		}
	}

	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}

	if i := strings.LastIndex(filename, "."); i >= 0 {
		if ignoredExtensions[strings.ToLower(filename[i+1:])] {
			return true
		}
	}

	if osArtifacts[filename] {
		return true
	}

	return false
}

// looksBinary reports whether the first 8 KB contain a NUL byte.
func looksBinary(content string) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return strings.ContainsRune(sniff, '\x00')
}
