package clean

import (
	"regexp"
	"strings"
)

// Signal is one boilerplate keyword. Substring signals match anywhere in an
// attribute value; word signals only match when delimited by non-alphanumeric
// characters, since short words like "ad" or "tag" occur inside ordinary
// class names ("heading", "stage").
type Signal struct {
	Word string
	Kind SignalKind
}

// SignalKind selects how a Signal is matched.
type SignalKind int

const (
	Substring SignalKind = iota
	Word
)

// NoiseSignals is the single source of truth for boilerplate detection.
var NoiseSignals = []Signal{
	{"nav", Substring}, {"menu", Substring},
	{"header", Substring}, {"footer", Substring},
	{"sidebar", Substring}, {"aside", Substring},
	{"toc", Word}, {"table-of-contents", Substring}, {"index", Substring},
	{"share", Substring}, {"sns", Word}, {"social", Substring},
	{"ad", Word}, {"ads", Word}, {"advert", Substring}, {"sponsor", Substring},
	{"recommend", Substring}, {"related", Substring},
	{"comment", Substring}, {"reply", Substring},
	{"profile", Substring}, {"author", Substring},
	{"tag", Word}, {"tags", Word}, {"category", Substring}, {"breadcrumb", Substring},
	{"pager", Substring}, {"pagination", Substring},
	{"subscribe", Substring}, {"newsletter", Substring},
	{"widget", Substring}, {"banner", Substring}, {"modal", Substring},
	{"popup", Substring}, {"cookie", Substring}, {"consent", Substring}, {"gdpr", Substring},
	{"cta", Word}, {"call-to-action", Substring},
	{"prev", Substring}, {"next", Substring},
}

// CaptionSignals targets figure captions and photo credits.
var CaptionSignals = []Signal{
	{"caption", Substring}, {"figcaption", Substring},
	{"photo-credit", Substring}, {"credit", Substring},
}

// Pattern is a compiled, case-insensitive signal matcher.
type Pattern struct {
	re *regexp.Regexp
}

// Compile builds a Pattern from signals.
func Compile(signals []Signal) *Pattern {
	alts := make([]string, 0, len(signals))
	for _, s := range signals {
		w := regexp.QuoteMeta(strings.ToLower(s.Word))
		if s.Kind == Word {
			w = `(?:^|[^a-z0-9])` + w + `(?:$|[^a-z0-9])`
		}
		alts = append(alts, w)
	}
	return &Pattern{re: regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)}
}

// Match reports whether value contains any signal.
func (p *Pattern) Match(value string) bool {
	if value == "" {
		return false
	}
	return p.re.MatchString(value)
}

var (
	noisePattern   = Compile(NoiseSignals)
	captionPattern = Compile(CaptionSignals)
)

// IsNoise reports whether value matches a boilerplate signal.
func IsNoise(value string) bool { return noisePattern.Match(value) }

// IsCaption reports whether value matches a caption or credit signal.
func IsCaption(value string) bool { return captionPattern.Match(value) }
