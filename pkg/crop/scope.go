package crop

import (
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// scopeLength is the number of base-36 characters in a scope token.
const scopeLength = 8

// NewScope returns a short random base-36 token used to keep identifiers of
// documents sharing one render canvas apart.
func NewScope() string {
	u := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	if len(s) > scopeLength {
		s = s[len(s)-scopeLength:]
	}
	return s
}

// scopedAttr describes an identifier attribute and how stylesheets refer
// to its tokens.
type scopedAttr struct {
	name   string
	prefix string
}

var scopedAttrs = [...]scopedAttr{
	{name: "class", prefix: "."},
	{name: "id", prefix: "#"},
}

// scopeIdentifiers appends "-scope" to every class and id token below
// container, then rewrites every ".class" and "#id" reference in the
// serialized tree so embedded stylesheets and url(#id) references keep
// pointing at the renamed elements. The tree is reparsed after each
// rewrite; the new root <svg> is returned.
//
// The reference rewrite is textual: a token that is a prefix of another
// reference (".a" inside ".ab") is rewritten too.
func scopeIdentifiers(container *html.Node, scope string) (*html.Node, error) {
	for _, attr := range scopedAttrs {
		var tokens []string
		seen := make(map[string]bool)

		for _, el := range htmlquery.Find(container, "//*") {
			val, ok := getAttr(el, attr.name)
			if !ok || val == "" {
				continue
			}
			fields := strings.Fields(val)
			for i, tok := range fields {
				if !seen[tok] {
					seen[tok] = true
					tokens = append(tokens, tok)
				}
				fields[i] = tok + "-" + scope
			}
			setAttr(el, attr.name, strings.Join(fields, " "))
		}

		if len(tokens) == 0 {
			continue
		}

		markup, err := innerHTML(container)
		if err != nil {
			return nil, err
		}
		markup = referencePattern(attr.prefix, tokens).ReplaceAllString(markup, "${0}-"+scope)

		container, _, err = parseFragment(markup)
		if err != nil {
			return nil, err
		}
	}
	return htmlquery.FindOne(container, "//svg"), nil
}

// referencePattern matches any of prefix+token, trying tokens in first-seen order.
func referencePattern(prefix string, tokens []string) *regexp.Regexp {
	alts := make([]string, len(tokens))
	for i, tok := range tokens {
		alts[i] = regexp.QuoteMeta(prefix + tok)
	}
	return regexp.MustCompile("(?:" + strings.Join(alts, "|") + ")")
}
