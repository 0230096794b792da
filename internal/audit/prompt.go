// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// systemPrompt frames the audit task. The response contract is enforced
// separately by schema validation.
const systemPrompt = `You are SkillGuard, a Senior Security Auditor for AI Agents.
Your job is to analyze the provided codebase for a "Skill" (Agent Tool) and produce a structured security report.

CONTEXT:
- You are strictly auditing for security risks, malware, and hidden behaviors.
- You must identify if the code does what it claims or has hidden flaws (e.g. leaking data, unexpected networking).
- Use the "Static Analysis" results as a lead, but verify them with the actual code.
- Produce a "Verification Plan" that allows a user to safely test this agent.

INSTRUCTIONS:
1. Trace execution paths from identified entry points (package.json, Dockerfile) to sensitive operations.
2. Confirm or refute each static risk; state which are real and which are benign.
3. For every finding cite the exact file path and snippet, with line references where derivable.
4. Identify logical vulnerabilities (e.g., prompt injection susceptibility, insecure defaults).
5. Output STRICT JSON matching the response schema. No prose outside the JSON object.`

// BuildPrompt serializes the smart pack files and static findings into the
// user prompt. Files are separated as XML-like blocks for unambiguous
// boundaries.
func BuildPrompt(pack *types.SmartScanPack, staticResult *types.StaticScanResult) string {
	var buf strings.Builder

	staticJSON, err := json.MarshalIndent(staticResult, "", "  ")
	if err != nil {
		staticJSON = []byte("{}")
	}

	buf.WriteString("STATIC FINDINGS:\n")
	buf.Write(staticJSON)
	buf.WriteString("\n\nCODEBASE:\n")

	for _, f := range pack.Files {
		fmt.Fprintf(&buf, "\n<file path=%q>\n%s\n</file>\n", f.Path, f.Content)
	}

	return buf.String()
}
