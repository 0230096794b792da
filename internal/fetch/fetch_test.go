// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeZip builds an in-memory archive with the top-level directory GitHub
// prepends to branch downloads.
func makeZip(t *testing.T, root string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(root + "/" + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// archiveServer serves zip archives keyed by request path.
func archiveServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_ReturnsFilteredFileSet(t *testing.T) {
	archive := makeZip(t, "skill-main", map[string]string{
		"SKILL.md":              "# Weather skill",
		"index.js":              "module.exports = {}",
		"node_modules/dep/x.js": "ignored",
		"logo.png":              "\x89PNG\x00\x00",
		".env":                  "API_KEY=abc",
	})
	srv := archiveServer(t, map[string][]byte{
		"/octocat/skill/archive/refs/heads/main.zip": archive,
	})

	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	fs, err := client.Fetch(context.Background(), "https://github.com/octocat/skill")
	require.NoError(t, err)

	assert.Equal(t, "octocat", fs.Owner)
	assert.Equal(t, "skill", fs.Repo)

	paths := make([]string, 0, len(fs.Files))
	for _, f := range fs.Files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"SKILL.md", "index.js", ".env"}, paths)

	// The tree keeps every path, including ones whose content was
	// filtered out, so path heuristics see the full layout.
	assert.Contains(t, fs.FileTree, "logo.png")
	assert.Contains(t, fs.FileTree, "node_modules/dep/x.js")
}

func TestFetch_FallsBackToMaster(t *testing.T) {
	archive := makeZip(t, "legacy-master", map[string]string{
		"main.py": "print('hi')",
	})
	srv := archiveServer(t, map[string][]byte{
		"/octocat/legacy/archive/refs/heads/master.zip": archive,
	})

	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	fs, err := client.Fetch(context.Background(), "https://github.com/octocat/legacy")
	require.NoError(t, err)

	require.Len(t, fs.Files, 1)
	assert.Equal(t, "main.py", fs.Files[0].Path)
}

func TestFetch_ExplicitBranchDoesNotFallBack(t *testing.T) {
	archive := makeZip(t, "skill-master", map[string]string{
		"main.py": "print('hi')",
	})
	srv := archiveServer(t, map[string][]byte{
		"/octocat/skill/archive/refs/heads/master.zip": archive,
	})

	// The URL pins a branch that does not exist; the master archive must
	// not be used as a silent substitute.
	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	_, err := client.Fetch(context.Background(), "https://github.com/octocat/skill/tree/release")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_BothBranchesMissing(t *testing.T) {
	srv := archiveServer(t, nil)

	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	_, err := client.Fetch(context.Background(), "https://github.com/octocat/ghost")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_MalformedURLFailsFast(t *testing.T) {
	client := NewClient(Config{ArchiveBaseURL: "http://127.0.0.1:0"})
	_, err := client.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestFetch_SubpathScoping(t *testing.T) {
	archive := makeZip(t, "skills-main", map[string]string{
		"weather/SKILL.md": "# Weather",
		"weather/run.js":   "fetch('https://api.example.com')",
		"other/SKILL.md":   "# Other",
		"README.md":        "top level",
	})
	srv := archiveServer(t, map[string][]byte{
		"/octocat/skills/archive/refs/heads/main.zip": archive,
	})

	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	fs, err := client.Fetch(context.Background(), "https://github.com/octocat/skills/tree/main/weather")
	require.NoError(t, err)

	assert.Equal(t, "weather", fs.Subpath)
	paths := make([]string, 0, len(fs.Files))
	for _, f := range fs.Files {
		paths = append(paths, f.Path)
	}
	// Paths are rewritten relative to the subpath.
	assert.ElementsMatch(t, []string{"SKILL.md", "run.js"}, paths)
}

func TestFetch_OversizedFilesExcluded(t *testing.T) {
	archive := makeZip(t, "skill-main", map[string]string{
		"big.txt":  strings.Repeat("a", maxFileSize+1),
		"small.js": "ok",
	})
	srv := archiveServer(t, map[string][]byte{
		"/octocat/skill/archive/refs/heads/main.zip": archive,
	})

	client := NewClient(Config{ArchiveBaseURL: srv.URL})
	fs, err := client.Fetch(context.Background(), "https://github.com/octocat/skill")
	require.NoError(t, err)

	require.Len(t, fs.Files, 1)
	assert.Equal(t, "small.js", fs.Files[0].Path)
	assert.Contains(t, fs.FileTree, "big.txt")
}

func TestProcessArchive_CorruptZip(t *testing.T) {
	_, err := processArchive([]byte("not a zip"), Ref{Owner: "o", Repo: "r"})
	assert.ErrorIs(t, err, ErrFetchFailed)
}
