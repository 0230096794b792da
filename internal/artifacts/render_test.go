// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package artifacts

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

func sampleResult() *types.DeepAuditResult {
	return &types.DeepAuditResult{
		RiskLevel: types.RiskMedium,
		Summary:   "One shell execution path confirmed.",
		PolicySuggestions: types.PolicySuggestions{
			AllowDomains:     []string{"api.example.com"},
			DenyPaths:        []string{"~/.ssh"},
			ToolRestrictions: []string{"no shell"},
		},
		VerificationPlan: types.VerificationPlan{
			PreflightChecks: []string{"Read run.js before executing."},
			RuntimeChecks:   []string{"Watch outbound connections."},
		},
	}
}

func TestRenderPolicy_AllSectionsPresent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := RenderPolicy("scan-123", sampleResult(), now)
	require.NoError(t, err)

	var doc PolicyDocument
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "SkillGuard", doc.Meta.GeneratedBy)
	assert.Equal(t, "scan-123", doc.Meta.ScanID)
	assert.Equal(t, now, doc.Meta.Timestamp)
	assert.Equal(t, types.RiskMedium, doc.Meta.RiskLevel)
	assert.Equal(t, []string{"api.example.com"}, doc.Policy.Network.AllowedDomains)
	assert.Equal(t, []string{"~/.ssh"}, doc.Policy.Filesystem.DeniedPaths)
	assert.Equal(t, []string{"no shell"}, doc.Policy.Execution.Restrictions)
}

func TestRenderPolicy_EmptySuggestionsStayArrays(t *testing.T) {
	result := &types.DeepAuditResult{RiskLevel: types.RiskLow}
	raw, err := RenderPolicy("scan-1", result, time.Now())
	require.NoError(t, err)

	// nil slices must serialize as [], not null; consumers treat the
	// policy sections as always present.
	text := string(raw)
	assert.Contains(t, text, `"allowed_domains": []`)
	assert.Contains(t, text, `"denied_paths": []`)
	assert.Contains(t, text, `"restrictions": []`)
	assert.NotContains(t, text, "null")
}

func TestRenderVerificationPlan_ThreePhases(t *testing.T) {
	plan := RenderVerificationPlan("scan-123", sampleResult())

	assert.Contains(t, plan, "**Scan ID**: `scan-123`")
	assert.Contains(t, plan, "**Risk Level**: MEDIUM")
	assert.Contains(t, plan, "## 1. Preflight Checks")
	assert.Contains(t, plan, "## 2. Runtime Verification")
	assert.Contains(t, plan, "## 3. Post-Run Audit")
	assert.Contains(t, plan, "- [ ] Read run.js before executing.")
	assert.Contains(t, plan, "- [ ] Watch outbound connections.")
	assert.Contains(t, plan, "One shell execution path confirmed.")
}

func TestRenderVerificationPlan_EmptySectionsGetPlaceholder(t *testing.T) {
	result := &types.DeepAuditResult{RiskLevel: types.RiskLow, Summary: "Clean."}
	plan := RenderVerificationPlan("scan-1", result)

	// Every phase still renders, each with the placeholder item.
	assert.Equal(t, 3, strings.Count(plan, "- [ ] (none suggested)"))
}

// recordingStore captures artifact writes in memory.
type recordingStore struct {
	objects map[string][]byte
	failOn  string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{objects: make(map[string][]byte)}
}

func (s *recordingStore) Put(_ context.Context, path string, content []byte, _ string) (string, error) {
	if s.failOn != "" && strings.Contains(path, s.failOn) {
		return "", assert.AnError
	}
	s.objects[path] = content
	return path, nil
}

func TestGenerate_WritesBothDocuments(t *testing.T) {
	store := newRecordingStore()

	created, err := Generate(context.Background(), store, "scan-42", sampleResult())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"skillguard/scan-42/policy.json",
		"skillguard/scan-42/verification_plan.md",
	}, created)
	assert.Contains(t, string(store.objects["skillguard/scan-42/policy.json"]), `"scan_id": "scan-42"`)
	assert.Contains(t, string(store.objects["skillguard/scan-42/verification_plan.md"]), "# Verification Plan")
}

func TestGenerate_PartialFailureReportsWhatWasWritten(t *testing.T) {
	store := newRecordingStore()
	store.failOn = "verification_plan"

	created, err := Generate(context.Background(), store, "scan-42", sampleResult())
	require.Error(t, err)

	assert.Equal(t, []string{"skillguard/scan-42/policy.json"}, created)
}
