// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL indicates the input could not be parsed as a repository
// reference. Input errors fail fast, before any network call, and are
// never retried.
var ErrInvalidURL = errors.New("invalid repository URL")

// Ref is a parsed repository reference.
type Ref struct {
	Owner   string
	Repo    string
	Branch  string // Empty when the URL names no branch; resolved at fetch time
	Subpath string // Non-empty for /tree/<branch>/<subpath> and /blob/<branch>/<path> URLs
}

// Slug returns the lowercased owner/repo identifier used as the skill key.
func (r Ref) Slug() string {
	return strings.ToLower(r.Owner + "/" + r.Repo)
}

// ParseRepoURL resolves a GitHub repository URL, optionally carrying a
// branch and subpath, into a Ref. Supported forms:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo/tree/branch/sub/path
//	https://github.com/owner/repo/blob/branch/file.txt
func ParseRepoURL(raw string) (Ref, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return Ref{}, fmt.Errorf("%w: expected owner/repo in %q", ErrInvalidURL, raw)
	}

	ref := Ref{
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
	}
	if ref.Owner == "" || ref.Repo == "" {
		return Ref{}, fmt.Errorf("%w: empty owner or repo in %q", ErrInvalidURL, raw)
	}

	if len(parts) >= 4 && (parts[2] == "tree" || parts[2] == "blob") {
		ref.Branch = parts[3]
		if len(parts) > 4 {
			ref.Subpath = strings.Join(parts[4:], "/")
		}
	}

	return ref, nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
