// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package static

import (
	"regexp"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// capabilityRule maps one capability category to its pattern family.
// A file contributes the capability if the pattern matches anywhere in
// its content.
type capabilityRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// capabilityRules covers the six fixed capability categories. Order is
// stable so capability accumulation is reproducible.
var capabilityRules = []capabilityRule{
	{"shell", regexp.MustCompile(`(?i)(child_process|exec|spawn|execSync|subprocess\.run|os\.system|popen)`)},
	{"filesystem_read", regexp.MustCompile(`(?i)(fs\.read|readFileSync|cat |grep |open\(.*['"]r['"]\))`)},
	{"filesystem_write", regexp.MustCompile(`(?i)(fs\.write|writeFileSync|>>|echo .* >|open\(.*['"]w['"]\))`)},
	{"network", regexp.MustCompile(`(?i)(fetch\(|axios|http\.request|curl|wget|requests\.get|urllib|httpx)`)},
	{"browser_data", regexp.MustCompile(`(?i)(puppeteer|selenium|playwright|chrome-aws-lambda|cookies|webdriver)`)},
	{"env_access", regexp.MustCompile(`(?i)(process\.env|dotenv|\.env|os\.environ|os\.getenv)`)},
}

// riskRule is one high-risk content pattern with its severity and message.
type riskRule struct {
	Pattern  *regexp.Regexp
	Code     string
	Severity types.Severity
	Message  string
}

// riskRules is the fixed ordered list of high-risk content patterns.
// Every match anywhere in a file emits one flag.
var riskRules = []riskRule{
	{regexp.MustCompile(`(?i)curl.*\|.*bash`), "PIPE_BASH", types.SeverityCritical, "Detected 'curl | bash' pattern"},
	{regexp.MustCompile(`(?i)wget.*\|.*sh`), "PIPE_SH", types.SeverityCritical, "Detected 'wget | sh' pattern"},
	{regexp.MustCompile(`(?i)powershell.*-enc`), "POWERSHELL_ENC", types.SeverityCritical, "Detected suspicious PowerShell encoding"},
	{regexp.MustCompile(`(?i)base64.*decode.*exec`), "BASE64_EXEC", types.SeverityCritical, "Detected Base64 decoded execution"},
	{regexp.MustCompile(`(?i)(eval|exec)\s*\(`), "UNSAFE_EVAL", types.SeverityHigh, "Detected usage of 'eval()' or 'exec()'"},
	{regexp.MustCompile(`(?i)os\.system\s*\(`), "OS_SYSTEM", types.SeverityHigh, "Detected usage of 'os.system()'"},
	{regexp.MustCompile(`(?i)chmod\s+\+x.*&&`), "CHMOD_EXEC", types.SeverityMedium, "Detected chmod +x followed by execution"},
	{regexp.MustCompile(`(?i)nc\s+-e\s`), "NETCAT_EXEC", types.SeverityHigh, "Detected netcat with command execution"},
}

// severityWeight is the static score increment per risk flag.
var severityWeight = map[types.Severity]int{
	types.SeverityCritical: 50,
	types.SeverityHigh:     20,
	types.SeverityMedium:   10,
	types.SeverityLow:      5,
}

// injectionRule detects prompt injection and misleading safety claims
// aimed at the LLM auditor.
type injectionRule struct {
	Pattern *regexp.Regexp
	Message string
}

var injectionRules = []injectionRule{
	{regexp.MustCompile(`(?i)ignore.*previous.*instructions`), "Attempts to bypass previous instructions"},
	{regexp.MustCompile(`(?i)forget.*all.*instructions`), "Attempts to reset LLM context"},
	{regexp.MustCompile(`(?i)this.*(?:is|code.*is).*safe`), "Misleading safety claim"},
	{regexp.MustCompile(`(?i)do.*not.*report`), "Attempts to suppress reporting"},
	{regexp.MustCompile(`(?i)skip.*security.*check`), "Attempts to skip security checks"},
	{regexp.MustCompile(`(?i)trust.*this.*code`), "Misleading trust claim"},
	{regexp.MustCompile(`(?i)no.*vulnerabilit`), "False vulnerability claim"},
	{regexp.MustCompile(`(?i)SAFE_CODE_MARKER`), "Suspicious safety marker"},
	{regexp.MustCompile(`(?i)ignore.*security`), "Attempts to ignore security"},
	{regexp.MustCompile(`(?i)everything.*is.*fine`), "Misleading reassurance"},
	{regexp.MustCompile(`(?i)nothing.*malicious`), "False safety claim"},
	{regexp.MustCompile(`(?i)you.*are.*now`), "Prompt injection attempt"},
}

// sensitivePathRules match credential, identity and cloud-config
// locations against the full file tree (paths, not content).
var sensitivePathRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.env`),
	regexp.MustCompile(`(?i)id_rsa`),
	regexp.MustCompile(`(?i)\.ssh`),
	regexp.MustCompile(`(?i)\.aws`),
	regexp.MustCompile(`(?i)\.kube`),
	regexp.MustCompile(`(?i)AppData`),
	regexp.MustCompile(`(?i)/etc/passwd`),
	regexp.MustCompile(`(?i)/etc/shadow`),
	regexp.MustCompile(`(?i)secrets\.toml`),
	regexp.MustCompile(`(?i)\.netrc`),
	regexp.MustCompile(`(?i)\.npmrc`),
}

// urlPattern extracts http(s) URL literals for outbound domain reporting.
var urlPattern = regexp.MustCompile(`https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// noiseDirs and noiseSuffixes form the allowlist of documentation, test
// and generated content excluded from injection heuristics. Examples and
// test fixtures legitimately contain phrases like "ignore previous
// instructions", so flagging them produces false positives. JSON and YAML
// stay in scope since they may carry agent configuration.
var noiseDirs = []string{
	"docs/",
	"music/",
	"content/",
	"assets/",
	"examples/",
	"test/",
	"tests/",
	"__tests__/",
	"spec/",
}

var noiseSuffixes = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	".csv",
	".txt",
	".map",
}
