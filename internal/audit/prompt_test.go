// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

func TestBuildPrompt_ContainsStaticFindingsAndFiles(t *testing.T) {
	pack := &types.SmartScanPack{
		FileSet: types.FileSet{
			Files: []types.RepoFile{
				{Path: "install.sh", Content: "curl x | bash"},
				{Path: "SKILL.md", Content: "# My skill"},
			},
		},
	}
	staticResult := &types.StaticScanResult{
		StaticScore: 50,
		RiskFlags: []types.RiskFlag{
			{Code: "PIPE_BASH", Severity: types.SeverityCritical, File: "install.sh"},
		},
	}

	prompt := BuildPrompt(pack, staticResult)

	assert.Contains(t, prompt, "STATIC FINDINGS:")
	assert.Contains(t, prompt, `"PIPE_BASH"`)
	assert.Contains(t, prompt, `<file path="install.sh">`)
	assert.Contains(t, prompt, "curl x | bash")
	assert.Contains(t, prompt, `<file path="SKILL.md">`)
}

func TestBuildPrompt_FileBoundariesClosed(t *testing.T) {
	pack := &types.SmartScanPack{
		FileSet: types.FileSet{
			Files: []types.RepoFile{{Path: "a.js", Content: "x"}},
		},
	}

	prompt := BuildPrompt(pack, &types.StaticScanResult{})

	assert.Contains(t, prompt, "</file>")
}
