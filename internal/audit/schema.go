// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// ErrSchemaViolation marks a model response that fails to validate against
// the audit schema. It is never retried on the same model: a schema
// violation indicates a systematic response problem, not transient load.
var ErrSchemaViolation = errors.New("response schema violation")

// auditSchema is the strict response contract for the deep audit call.
const auditSchema = `{
  "type": "object",
  "properties": {
    "risk_level": {"type": "string", "enum": ["low", "medium", "high"]},
    "summary": {"type": "string"},
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "severity": {"type": "string", "enum": ["critical", "high", "medium", "low"]},
          "why_it_matters": {"type": "string"},
          "evidence": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "source": {"type": "string"},
                "snippet": {"type": "string"}
              },
              "required": ["source", "snippet"]
            }
          },
          "recommended_fix": {"type": "string"}
        },
        "required": ["title", "severity", "why_it_matters", "evidence", "recommended_fix"]
      }
    },
    "attack_chain": {"type": "array", "items": {"type": "string"}},
    "safe_run_checklist": {"type": "array", "items": {"type": "string"}},
    "suggested_category": {"type": "string"},
    "policy_suggestions": {
      "type": "object",
      "properties": {
        "allow_domains": {"type": "array", "items": {"type": "string"}},
        "deny_paths": {"type": "array", "items": {"type": "string"}},
        "tool_restrictions": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["allow_domains", "deny_paths", "tool_restrictions"]
    },
    "verification_plan": {
      "type": "object",
      "properties": {
        "preflight_checks": {"type": "array", "items": {"type": "string"}},
        "runtime_checks": {"type": "array", "items": {"type": "string"}},
        "postrun_checks": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["preflight_checks", "runtime_checks", "postrun_checks"]
    }
  },
  "required": ["risk_level", "summary", "findings", "attack_chain", "safe_run_checklist", "policy_suggestions", "verification_plan"]
}`

var schemaLoader = gojsonschema.NewStringLoader(auditSchema)

// parseResult validates the raw model output against the audit schema and
// decodes it. Models occasionally wrap the JSON in a markdown fence; that
// wrapper is stripped before validation.
func parseResult(raw string) (*types.DeepAuditResult, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrSchemaViolation)
	}

	validation, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if !validation.Valid() {
		var issues []string
		for _, e := range validation.Errors() {
			issues = append(issues, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(issues, "; "))
	}

	var result types.DeepAuditResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrSchemaViolation, err)
	}
	return &result, nil
}

// stripFence removes a surrounding ```json ... ``` markdown fence if
// present.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
