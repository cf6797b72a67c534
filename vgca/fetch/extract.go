package fetch

import (
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ExtractedContent is the article text and imagery pulled from one page,
// in document order. It is consumed once by the prompt stage.
type ExtractedContent struct {
	Headings   []string
	Paragraphs []string
	ImageURLs  []string
}

// Empty reports whether no article text survived extraction.
func (c *ExtractedContent) Empty() bool {
	return len(c.Headings) == 0 && len(c.Paragraphs) == 0
}

// Blocks returns headings followed by paragraphs, preserving order within
// each group.
func (c *ExtractedContent) Blocks() []string {
	blocks := make([]string, 0, len(c.Headings)+len(c.Paragraphs))
	blocks = append(blocks, c.Headings...)
	blocks = append(blocks, c.Paragraphs...)
	return blocks
}

// defaultSelectors is the priority-ordered list used to locate the main
// content region when no site profile matches. The whole body is the last
// resort.
var defaultSelectors = []string{
	"article",
	"main",
	".content",
	".post-content",
	".entry-content",
	".article-body",
	".post-body",
	".entry-body",
	".main-content",
	"#content",
	"#main",
}

// boilerplateKeywords flag containers that hold UI chrome rather than
// article text. A class or id containing any of them skips the subtree.
var boilerplateKeywords = []string{"menu", "navigation", "sidebar", "footer", "header", "advertisement"}

// imageBlockKeywords drop decorative or tracking imagery by URL substring.
// Ad URLs need token matching: a bare "ad" substring would reject every
// /uploads/ path.
var imageBlockKeywords = []string{"logo", "icon", "avatar", "banner"}

var imageAdPattern = regexp.MustCompile(`(^|[/_.~-])ads?([/_.~-]|$)`)

// skippedTags are never descended into during collection.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
	"form":     true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
}

// inlineTags may contribute text to an enclosing div block. Anything else
// is a block element with its own collection rules.
var inlineTags = map[string]bool{
	"a":      true,
	"span":   true,
	"b":      true,
	"i":      true,
	"u":      true,
	"em":     true,
	"strong": true,
	"small":  true,
	"code":   true,
	"ruby":   true,
	"rt":     true,
	"rp":     true,
	"br":     true,
	"wbr":    true,
}

const (
	// maxBoilerplateRatio is the share of rejected div blocks above which
	// a thin page is treated as UI chrome with no article body.
	maxBoilerplateRatio = 0.7

	// minArticleRunes is the text volume below which the ratio guard may
	// fire.
	minArticleRunes = 100
)

// Extractor distills parsed HTML into ExtractedContent.
type Extractor struct {
	minBlockRunes int
	sites         *SiteProfiles
}

// NewExtractor returns an Extractor keeping div blocks of at least
// minBlockRunes runes and honoring per-site selector overrides.
func NewExtractor(minBlockRunes int, sites *SiteProfiles) *Extractor {
	if minBlockRunes <= 0 {
		minBlockRunes = 50
	}
	return &Extractor{minBlockRunes: minBlockRunes, sites: sites}
}

// Extract parses the document and collects article text and image URLs
// from its main content region. base resolves relative image references.
func (e *Extractor) Extract(base *url.URL, r io.Reader) (*ExtractedContent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	region := e.findMainRegion(doc, base)
	content := &ExtractedContent{}
	stats := &collectStats{}
	e.collect(region, base, content, stats)

	// A page whose candidate blocks are mostly chrome has no real article
	// even if a few strings survived.
	if stats.rejectedBlocks > 0 && stats.textRunes < minArticleRunes {
		total := stats.rejectedBlocks + stats.keptBlocks
		if float64(stats.rejectedBlocks)/float64(total) > maxBoilerplateRatio {
			return &ExtractedContent{}, nil
		}
	}

	return content, nil
}

type collectStats struct {
	keptBlocks     int
	rejectedBlocks int
	textRunes      int
}

// findMainRegion tries site-specific selectors first, then the generic
// chain, then <body>, then the document root.
func (e *Extractor) findMainRegion(doc *html.Node, base *url.URL) *html.Node {
	selectors := defaultSelectors
	if base != nil {
		if profile, ok := e.sites.Lookup(base.Hostname()); ok {
			selectors = append(append([]string{}, profile.Selectors...), defaultSelectors...)
		}
	}
	for _, sel := range selectors {
		if n := findFirst(doc, sel); n != nil {
			return n
		}
	}
	if body := findFirst(doc, "body"); body != nil {
		return body
	}
	return doc
}

// findFirst walks the tree depth-first and returns the first element
// matching the selector. Selectors are the minimal forms the chain needs:
// "tag", ".class", "#id" and "tag.class".
func findFirst(n *html.Node, sel string) *html.Node {
	if n.Type == html.ElementNode && matchesSelector(n, sel) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, sel); found != nil {
			return found
		}
	}
	return nil
}

func matchesSelector(n *html.Node, sel string) bool {
	switch {
	case strings.HasPrefix(sel, "#"):
		return attrValue(n, "id") == sel[1:]
	case strings.HasPrefix(sel, "."):
		return hasClass(n, sel[1:])
	case strings.Contains(sel, "."):
		tag, class, _ := strings.Cut(sel, ".")
		return n.Data == tag && hasClass(n, class)
	default:
		return n.Data == sel
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// isBoilerplate reports whether an element's class or id marks it as UI
// chrome.
func isBoilerplate(n *html.Node) bool {
	marker := strings.ToLower(attrValue(n, "class") + " " + attrValue(n, "id"))
	if marker == " " {
		return false
	}
	for _, kw := range boilerplateKeywords {
		if strings.Contains(marker, kw) {
			return true
		}
	}
	return false
}

// collect walks the region gathering headings, paragraphs, qualifying div
// blocks and image URLs.
func (e *Extractor) collect(n *html.Node, base *url.URL, content *ExtractedContent, stats *collectStats) {
	if n.Type == html.ElementNode {
		if skippedTags[n.Data] {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := nodeText(n); text != "" {
				content.Headings = append(content.Headings, text)
				stats.keptBlocks++
				stats.textRunes += utf8.RuneCountInString(text)
			}
			return
		case "p":
			if isBoilerplate(n) {
				stats.rejectedBlocks++
				return
			}
			if text := nodeText(n); text != "" {
				content.Paragraphs = append(content.Paragraphs, text)
				stats.keptBlocks++
				stats.textRunes += utf8.RuneCountInString(text)
			}
			e.collectImages(n, base, content)
			return
		case "div":
			if isBoilerplate(n) {
				stats.rejectedBlocks++
				return
			}
			// A div only counts as a text block through its inline
			// content; nested blocks are visited on their own.
			if text := inlineText(n); utf8.RuneCountInString(text) >= e.minBlockRunes {
				content.Paragraphs = append(content.Paragraphs, text)
				stats.keptBlocks++
				stats.textRunes += utf8.RuneCountInString(text)
			}
		case "img":
			e.collectImage(n, base, content)
			return
		default:
			if isBoilerplate(n) {
				stats.rejectedBlocks++
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.collect(c, base, content, stats)
	}
}

func (e *Extractor) collectImages(n *html.Node, base *url.URL, content *ExtractedContent) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" {
			e.collectImage(c, base, content)
		} else {
			e.collectImages(c, base, content)
		}
	}
}

func (e *Extractor) collectImage(n *html.Node, base *url.URL, content *ExtractedContent) {
	src := attrValue(n, "src")
	if src == "" {
		src = attrValue(n, "data-src")
	}
	resolved, ok := resolveImageURL(base, src)
	if !ok {
		return
	}
	for _, existing := range content.ImageURLs {
		if existing == resolved {
			return
		}
	}
	content.ImageURLs = append(content.ImageURLs, resolved)
}

// resolveImageURL makes src absolute against the page origin and applies
// the decorative-image blocklist.
func resolveImageURL(base *url.URL, src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return "", false
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	lower := strings.ToLower(ref.String())
	for _, kw := range imageBlockKeywords {
		if strings.Contains(lower, kw) {
			return "", false
		}
	}
	if imageAdPattern.MatchString(ref.Path) {
		return "", false
	}
	return ref.String(), true
}

// nodeText joins all descendant text, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	appendText(n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func appendText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	if n.Type == html.ElementNode && skippedTags[n.Data] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, b)
	}
}

// inlineText joins the text of n's own text nodes and inline children,
// leaving nested block elements to their own collection pass.
func inlineText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
			b.WriteByte(' ')
		case c.Type == html.ElementNode && inlineTags[c.Data]:
			appendText(c, &b)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
