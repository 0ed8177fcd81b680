package interceptor

import (
	"regexp"
	"strings"

	"github.com/haukened/dlguard/internal/guard/domain"
)

// dangerousExtensions is the fixed denylist of executable and archive
// extensions. Matching is a case-insensitive suffix test on the full
// filename.
var dangerousExtensions = []string{
	".exe", ".msi", ".bat", ".cmd", ".vbs", ".js", ".jar", ".scr",
	".dll", ".pif", ".com", ".ps1", ".reg", ".vb", ".vbe", ".wsf",
	".zip", ".rar", ".7z", ".iso",
}

// suspiciousURLPatterns are heuristic shapes checked against the full source
// URL: known shorteners, throwaway "download/free/share/cloud" host prefixes,
// long labels under .top, and the .xyz/.info TLDs.
var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`bit\.ly`),
	regexp.MustCompile(`tinyurl\.com`),
	regexp.MustCompile(`free\.host`),
	regexp.MustCompile(`download\d*\.`),
	regexp.MustCompile(`[\w-]{10,}\.top`),
	regexp.MustCompile(`\.xyz$`),
	regexp.MustCompile(`\.info$`),
	regexp.MustCompile(`cloud\d*\.`),
	regexp.MustCompile(`share\d*\.`),
}

// smallPayloadBytes is the size below which a known payload size is
// considered unusually small.
const smallPayloadBytes = 100000

// safeDownloadsForMitigation is the safe-count a domain must exceed before
// the reputation mitigation applies.
const safeDownloadsForMitigation = 2

// Rule reason strings, one appended per triggered rule in evaluation order.
const (
	ReasonDangerousExtension = "File type is potentially dangerous"
	ReasonUntrustedDomain    = "Domain is not in your trusted list"
	ReasonSuspiciousURL      = "URL matches a suspicious pattern"
	ReasonSmallPayload       = "File size is unusually small"
	ReasonDomainReputation   = "Domain frequently used for safe downloads"
)

// Rule contributions.
const (
	scoreDangerousExtension = 20
	scoreUntrustedDomain    = 30
	scoreSuspiciousURL      = 20
	scoreSmallPayload       = 20
	scoreDomainReputation   = -20
)

// HasDangerousExtension reports whether the filename's extension is in the
// fixed denylist.
func HasDangerousExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range dangerousExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Score evaluates the five risk rules against a download. It is pure and
// deterministic given its inputs: the descriptor, the pre-extracted hostname,
// and read-only views of the whitelist and history. Rule order fixes the
// presentation order of the reasons, not the sum.
func Score(d domain.Download, host string, trust TrustList, hist HistoryLog) domain.RiskAssessment {
	var a domain.RiskAssessment

	if HasDangerousExtension(d.Filename) {
		a.Score += scoreDangerousExtension
		a.Reasons = append(a.Reasons, ReasonDangerousExtension)
	}

	if !trust.IsTrusted(host) {
		a.Score += scoreUntrustedDomain
		a.Reasons = append(a.Reasons, ReasonUntrustedDomain)
	}

	for _, pattern := range suspiciousURLPatterns {
		if pattern.MatchString(d.URL) {
			a.Score += scoreSuspiciousURL
			a.Reasons = append(a.Reasons, ReasonSuspiciousURL)
			break
		}
	}

	if d.Size > 0 && d.Size < smallPayloadBytes {
		a.Score += scoreSmallPayload
		a.Reasons = append(a.Reasons, ReasonSmallPayload)
	}

	if hist.CountSafeFromDomain(host) > safeDownloadsForMitigation {
		a.Score += scoreDomainReputation
		a.Reasons = append(a.Reasons, ReasonDomainReputation)
	}

	return a
}
