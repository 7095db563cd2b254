// Package langdetect decides whether a document is written in Sage or in
// plain Python. It uses go-enry for file names and shebangs and falls back
// to Sage-only syntax found in the content.
package langdetect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Dialect is a source language gosage knows how to handle.
type Dialect string

const (
	Sage    Dialect = "sage"
	Python  Dialect = "python"
	Unknown Dialect = "unknown"
)

// ParseDialect parses a dialect name. "auto" and the empty string parse as
// Unknown, meaning detection should decide.
func ParseDialect(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sage", "sagemath":
		return Sage, true
	case "python", "py":
		return Python, true
	case "", "auto":
		return Unknown, true
	}
	return Unknown, false
}

// sniffLimit bounds how much content pattern detection reads.
const sniffLimit = 64 * 1024

var (
	declarationPattern = regexp.MustCompile(`(?m)^[ \t]*[A-Za-z_]\w*\.<[^<>\n=]*>\s*=`)
	xorPattern         = regexp.MustCompile(`\w\s*\^\^\s*\w`)
)

// Detect returns the dialect of content read from path. path may be empty.
func Detect(path string, content []byte) Dialect {
	// Strategy 1: the file name decides when it is conclusive.
	if path != "" {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			if d := fromEnry(lang); d != Unknown {
				return d
			}
		}
	}

	if len(content) == 0 {
		return Unknown
	}

	// Strategy 2: shebang.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		if d := fromEnry(lang); d != Unknown {
			return d
		}
	}
	if line, _, _ := bytes.Cut(content, []byte("\n")); bytes.HasPrefix(line, []byte("#!")) &&
		bytes.Contains(line, []byte("sage")) {
		return Sage
	}

	// Strategy 3: syntax Python does not accept.
	if hasSageSyntax(content) {
		return Sage
	}

	// Strategy 4: the classifier, restricted to the two candidates.
	if lang, safe := enry.GetLanguageByClassifier(content, []string{"Sage", "Python"}); safe {
		return fromEnry(lang)
	}
	return Unknown
}

// hasSageSyntax reports whether content uses a generator declaration or the
// xor operator.
func hasSageSyntax(content []byte) bool {
	if len(content) > sniffLimit {
		content = content[:sniffLimit]
	}
	return declarationPattern.Match(content) || xorPattern.Match(content)
}

func fromEnry(lang string) Dialect {
	switch lang {
	case "Sage":
		return Sage
	case "Python":
		return Python
	}
	return Unknown
}

// Resolve returns the configured dialect, or the detected one when the
// configuration leaves it to detection. Undecidable content counts as Sage,
// since rewriting plain Python is harmless.
func Resolve(configured Dialect, path string, content []byte) Dialect {
	if configured == Sage || configured == Python {
		return configured
	}
	if d := Detect(path, content); d != Unknown {
		return d
	}
	return Sage
}
