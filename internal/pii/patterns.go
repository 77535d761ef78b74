package pii

import "regexp"

// Confidence buckets surfaced to the reviewer.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Detector type names. These are stable identifiers persisted in job records
// and shown in review listings.
const (
	TypeEmail           = "email"
	TypePhone           = "phone"
	TypeSSN             = "ssn"
	TypeCreditCard      = "credit_card"
	TypeIPAddress       = "ip_address"
	TypeUserPathUnix    = "user_path_unix"
	TypeUserPathWindows = "user_path_windows"
	TypeAWSKey          = "aws_key"
	TypeAPIKeyOpenAI    = "api_key_openai"
	TypeAPIKeyGitHub    = "api_key_github"
	TypeURL             = "url"
	TypeDate            = "date"
	TypePersonName      = "person_name"
)

type detector struct {
	name     string
	pattern  *regexp.Regexp
	optional bool
}

// Detectors run in this order so scan results are deterministic. Patterns
// are matched case-insensitively; the first match per region is recorded.
var detectors = []detector{
	{TypeEmail, regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), false},
	{TypePhone, regexp.MustCompile(`(?i)(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`), false},
	{TypeSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), false},
	{TypeCreditCard, regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`), false},
	{TypeIPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), false},
	{TypeUserPathUnix, regexp.MustCompile(`/Users/[A-Za-z0-9_-]+`), false},
	{TypeUserPathWindows, regexp.MustCompile(`C:\\Users\\[A-Za-z0-9_-]+`), false},
	{TypeAWSKey, regexp.MustCompile(`\b(AKIA|ABIA|ACCA|ASIA)[A-Z0-9]{16}\b`), false},
	{TypeAPIKeyOpenAI, regexp.MustCompile(`\bsk-[A-Za-z0-9]{32,}\b`), false},
	{TypeAPIKeyGitHub, regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`), false},
	{TypeURL, regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`), true},
	{TypeDate, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`), true},
}

// OptionalTypes lists the detector names that require explicit enabling.
func OptionalTypes() []string {
	var names []string
	for _, d := range detectors {
		if d.optional {
			names = append(names, d.name)
		}
	}
	return names
}
