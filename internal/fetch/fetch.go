// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fetch resolves a repository URL to a flat, in-memory set of text
// files. It downloads a branch archive over HTTP, falls back to the legacy
// default branch name on 404, and filters binaries and noise before
// handing the file set to the scan pipeline.
package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v72/github"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// ErrFetchFailed indicates the archive download failed for both branch
// candidates. The whole scan attempt fails; no partial file set is
// produced.
var ErrFetchFailed = errors.New("repository fetch failed")

const (
	defaultBranch       = "main"
	legacyDefaultBranch = "master"
)

// Config configures the fetcher.
type Config struct {
	// ArchiveBaseURL is the host serving branch archives. Defaults to
	// https://github.com; overridable for tests.
	ArchiveBaseURL string
	// GitHubToken authenticates default-branch lookups against the GitHub
	// API. Optional; without it the fetcher guesses main then master.
	GitHubToken string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Client downloads repository archives and produces file sets.
type Client struct {
	http    *retryablehttp.Client
	gh      *github.Client
	baseURL string
	log     *zap.Logger
}

// NewClient builds a fetcher. When a token is configured the GitHub API is
// used to resolve the repository's real default branch before downloading.
func NewClient(cfg Config) *Client {
	baseURL := cfg.ArchiveBaseURL
	if baseURL == "" {
		baseURL = "https://github.com"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.Logger = nil

	var gh *github.Client
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	return &Client{
		http:    httpClient,
		gh:      gh,
		baseURL: baseURL,
		log:     logger,
	}
}

// Fetch resolves the URL, downloads the branch archive and returns the
// filtered file set. Malformed URLs fail before any network call.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*types.FileSet, error) {
	ref, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}
	return c.FetchRef(ctx, ref)
}

// FetchRef downloads and processes the archive for an already-parsed
// reference.
func (c *Client) FetchRef(ctx context.Context, ref Ref) (*types.FileSet, error) {
	branch := ref.Branch
	guessed := false
	if branch == "" {
		branch = c.resolveDefaultBranch(ctx, ref)
		guessed = branch == defaultBranch
	}

	data, err := c.downloadArchive(ctx, ref, branch)
	if err != nil && guessed {
		// The nominal default branch 404ed; retry once against the
		// conventional legacy name before failing.
		c.log.Info("default branch archive missing, trying legacy name",
			zap.String("repo", ref.Slug()), zap.String("branch", legacyDefaultBranch))
		data, err = c.downloadArchive(ctx, ref, legacyDefaultBranch)
	}
	if err != nil {
		return nil, err
	}

	return processArchive(data, ref)
}

// resolveDefaultBranch asks the GitHub API for the repository's default
// branch, falling back to "main" when the API is unavailable.
func (c *Client) resolveDefaultBranch(ctx context.Context, ref Ref) string {
	if c.gh == nil {
		return defaultBranch
	}
	repo, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Repo)
	if err != nil || repo.GetDefaultBranch() == "" {
		c.log.Debug("default branch lookup failed, assuming main",
			zap.String("repo", ref.Slug()), zap.Error(err))
		return defaultBranch
	}
	return repo.GetDefaultBranch()
}

func (c *Client) downloadArchive(ctx context.Context, ref Ref, branch string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/archive/refs/heads/%s.zip", c.baseURL, ref.Owner, ref.Repo, branch)
	c.log.Info("downloading archive", zap.String("url", url))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailed, url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading archive body: %v", ErrFetchFailed, err)
	}
	return data, nil
}

// processArchive unpacks the zip into a FileSet, applying the binary and
// noise filters and rewriting paths relative to the subpath when one is
// set.
func processArchive(data []byte, ref Ref) (*types.FileSet, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: reading zip: %v", ErrFetchFailed, err)
	}

	var files []types.RepoFile
	var fileTree []string

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		// Strip the "repo-branch/" top-level directory GitHub adds.
		cleanPath := stripArchiveRoot(entry.Name)
		if cleanPath == "" {
			continue
		}

		if ref.Subpath != "" {
			rel, ok := underSubpath(cleanPath, ref.Subpath)
			if !ok {
				continue
			}
			cleanPath = rel
		}

		fileTree = append(fileTree, cleanPath)

		if shouldSkip(cleanPath) {
			continue
		}
		if entry.UncompressedSize64 > maxFileSize {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxFileSize+1))
		rc.Close()
		if err != nil || len(content) > maxFileSize {
			continue
		}

		text := string(content)
		if looksBinary(text) {
			continue
		}

		files = append(files, types.RepoFile{Path: cleanPath, Content: text})
	}

	return &types.FileSet{
		Owner:    ref.Owner,
		Repo:     ref.Repo,
		Subpath:  ref.Subpath,
		Files:    files,
		FileTree: fileTree,
	}, nil
}

func stripArchiveRoot(name string) string {
	if i := strings.Index(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// underSubpath reports whether path is the subpath itself or nested under
// it, returning the path rewritten relative to the subpath.
func underSubpath(path, subpath string) (string, bool) {
	sub := strings.Trim(subpath, "/")
	if path == sub {
		return path[strings.LastIndex(path, "/")+1:], true
	}
	if strings.HasPrefix(path, sub+"/") {
		return path[len(sub)+1:], true
	}
	return "", false
}
