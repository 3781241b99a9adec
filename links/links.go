// Package links detects URLs in the editor text and offers them as tokens
// that turn into anchors when Enter is pressed inside them.
package links

import (
	"log/slog"
	"net"
	"regexp"
	"strings"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/tokenizer"
	"golang.org/x/net/publicsuffix"
)

// TokenType is the type of the tokens created by the plugin.
const TokenType = "link"

var (
	urlPattern    = regexp.MustCompile(`(?i)(?:(?:\bhttps?:)?//|\b)(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z][a-z0-9-]*[a-z0-9](?::\d{1,5})?(?:[/?#][^\s<>"]*)?`)
	schemePattern = regexp.MustCompile(`(?i)^https?://`)
)

// Match is a URL found in a text.
type Match struct {
	Index int
	Text  string
}

// Find returns the URLs in text. Matches preceded by "@" are e-mail
// addresses and skipped, as are bare hosts without a known public suffix.
func Find(text string) []Match {
	var matches []Match
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && text[start-1] == '@' {
			continue
		}
		m := strings.TrimRight(text[start:end], ".,;:!?)]}'")
		if m == "" || !knownHost(m) {
			continue
		}
		matches = append(matches, Match{Index: start, Text: m})
	}
	return matches
}

// knownHost reports whether the host of u ends in a public suffix listed
// by ICANN or a private registry.
func knownHost(u string) bool {
	host := schemePattern.ReplaceAllString(u, "")
	host = strings.TrimPrefix(host, "//")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}

// IncludeProtocol prefixes u with a scheme when it has none.
func IncludeProtocol(u string) string {
	switch {
	case schemePattern.MatchString(u):
		return u
	case strings.HasPrefix(u, "//"):
		return "http:" + u
	}
	return "http://" + u
}

// Plugin feeds URL tokens into a tokenizer.
type Plugin struct {
	tokens *tokenizer.Tokenizer
	logger *slog.Logger
}

// Attach registers the plugin with t.
func Attach(t *tokenizer.Tokenizer, logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Plugin{tokens: t, logger: logger.With("component", "editor:tokenizer:links")}
	t.OnUpdate(p.scan)
	return p
}

func (p *Plugin) scan(container *dom.Node, text string) {
	for _, m := range Find(text) {
		if p.linked(container, m) {
			continue
		}
		tok := p.tokens.CreateToken(container, m.Text, m.Index)
		tok.Type = TokenType
		tok.Replacement = replaceWithLink
		tok.ReplaceOnEnter = true
		p.tokens.Add(tok)
	}
}

// linked reports whether the match is already the text of an anchor
// pointing to it.
func (p *Plugin) linked(container *dom.Node, m Match) bool {
	el := container.AsElement()
	if el == nil {
		return false
	}
	anchors := el.QueryAll(func(a *dom.Element) bool { return a.Is("a") })
	if len(anchors) == 0 {
		return false
	}
	tok := tokenizer.NewToken(container, m.Text, m.Index)
	defer tok.Range.Detach()
	for _, a := range anchors {
		if a.GetAttribute("href") == IncludeProtocol(m.Text) && a.TextContent() == m.Text && tok.IntersectsNode(a.AsNode()) {
			p.logger.Debug("skipping existing link", "href", m.Text)
			return true
		}
	}
	return false
}

func replaceWithLink(tok *tokenizer.Token) (*dom.Node, error) {
	a := tok.Container.OwnerDocument().CreateElement("a")
	content, err := tok.Range.ExtractContents()
	if err != nil {
		return nil, err
	}
	a.AppendChild(content)
	a.SetAttribute("href", IncludeProtocol(tok.Text))
	return a.AsNode(), nil
}
