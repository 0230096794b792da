// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindingCounter_SingleChunk(t *testing.T) {
	c := &findingCounter{}
	n := c.Feed(`{"risk_level": "high", "findings": [{"title": "a"}, {"title": "b"}], "summary": "x"}`)

	assert.Equal(t, 2, n)
}

func TestFindingCounter_SplitAcrossChunks(t *testing.T) {
	c := &findingCounter{}
	chunks := []string{
		`{"risk_level": "high", "find`,
		`ings": [{"title": `,
		`"curl pipe bash"`,
		`, "severity": "critical"}`,
		`, {"title": "eval"`,
		`}]`,
		`, "summary": "bad"}`,
	}

	var counts []int
	for _, chunk := range chunks {
		counts = append(counts, c.Feed(chunk))
	}

	assert.Equal(t, []int{0, 0, 0, 1, 1, 2, 2}, counts)
}

func TestFindingCounter_Monotonic(t *testing.T) {
	c := &findingCounter{}
	prev := 0
	for _, chunk := range []string{`{"findings": [`, `{"a": 1},`, ` {"b": {"nested": 2}}`, `, {"c": 3}]`, `, "tail": "}}}"}`} {
		n := c.Feed(chunk)
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
	assert.Equal(t, 3, c.Count())
}

func TestFindingCounter_BracesInsideStringsIgnored(t *testing.T) {
	c := &findingCounter{}
	c.Feed(`{"findings": [{"snippet": "if (x) { run(); }"}, {"snippet": "arr[0]"}]}`)

	assert.Equal(t, 2, c.Count())
}

func TestFindingCounter_EscapedQuotes(t *testing.T) {
	c := &findingCounter{}
	c.Feed(`{"findings": [{"snippet": "echo \"}{\" done"}]}`)

	assert.Equal(t, 1, c.Count())
}

func TestFindingCounter_NestedObjectsCountOnce(t *testing.T) {
	c := &findingCounter{}
	c.Feed(`{"findings": [{"evidence": [{"source": "a.js", "snippet": "x"}], "title": "t"}]}`)

	assert.Equal(t, 1, c.Count())
}

func TestFindingCounter_StopsAfterArrayCloses(t *testing.T) {
	c := &findingCounter{}
	c.Feed(`{"findings": [{"a": 1}], "policy_suggestions": {"deny_paths": ["x"]}}`)
	n := c.Feed(`{"more": "objects"}`)

	assert.Equal(t, 1, n)
}

func TestFindingCounter_NoFindingsKey(t *testing.T) {
	c := &findingCounter{}
	n := c.Feed(`{"risk_level": "low", "summary": "clean"}`)

	assert.Equal(t, 0, n)
}

func TestFindingCounter_EmptyArray(t *testing.T) {
	c := &findingCounter{}
	n := c.Feed(`{"findings": []}`)

	assert.Equal(t, 0, n)
}
