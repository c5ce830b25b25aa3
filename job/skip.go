package job

import (
	"regexp"

	"renditionmaker/logger"
)

// compileSkipPatterns anchors each pattern so it must match the whole MIME
// type. Patterns that do not compile are logged and left out.
func compileSkipPatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			logger.Warnf("ignoring invalid skip pattern %q: %v", p, err)
			continue
		}
		out = append(out, re)
	}
	return out
}

// ShouldSkip reports whether rendition generation is bypassed for an asset
// of the given MIME type. An unknown type or an empty pattern set never skips.
// Patterns are compiled per call; the planner evaluates this once per execution.
func ShouldSkip(assetMimeType string, skipPatterns []string) bool {
	if assetMimeType == "" || len(skipPatterns) == 0 {
		return false
	}
	for _, re := range compileSkipPatterns(skipPatterns) {
		if re.MatchString(assetMimeType) {
			logger.Debugf("skipped for MIME type: %s", assetMimeType)
			return true
		}
	}
	return false
}
