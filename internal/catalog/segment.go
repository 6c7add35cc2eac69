package catalog

import (
	"iter"
	"strings"

	"uwcatalog/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// layout finds the course blocks in a parsed page in one particular markup
// arrangement.
type layout func(doc *goquery.Document) []func() Block

var layouts = []layout{
	paragraphLayout,
	headingLayout,
}

// Segment splits the content of a department page into one block per course
// listing, in page order. Each call parses the content again.
func Segment(content string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		if strings.TrimSpace(content) == "" {
			return
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return
		}
		for _, find := range layouts {
			blocks := find(doc)
			if len(blocks) == 0 {
				continue
			}
			for _, block := range blocks {
				if !yield(block()) {
					return
				}
			}
			return
		}
	}
}

// isPlanningLink matches the "View course details in MyPlan" link appended to
// every listing.
func isPlanningLink(n *html.Node) bool {
	if n.DataAtom != atom.A {
		return false
	}
	return strings.Contains(htmlutil.GetText(n), "View course details")
}

func isHeaderElement(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.B || n.DataAtom == atom.Strong)
}

// isNameAnchor matches the `<a name="cse142">` wrapper around each listing.
func isNameAnchor(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.A {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return false
		}
	}
	return true
}

// firstContent returns the first descendant of n that carries any text,
// skipping whitespace and stepping into name anchors.
//
// The catalog nests each listing inside a name anchor and ends it with a
// MyPlan link, the parser splits the anchor around the paragraph so the
// header ends up inside a copy of the anchor:
//
//	<a name="cse142"></a><p><a name="cse142"><b>CSE 142 ...</b><br>...</a><a href="...">...</a></p>
func firstContent(n *html.Node) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if strings.TrimSpace(child.Data) == "" {
				continue
			}
			return child
		case html.ElementNode:
			if strings.TrimSpace(htmlutil.GetText(child)) == "" {
				continue
			}
			if isNameAnchor(child) {
				return firstContent(child)
			}
			return child
		}
	}
	return nil
}

// paragraphLayout is the layout of the catalog pages:
//
//	<p><b>CSE 142 Computer Programming I (4) NW, QSR</b><br>description...</p>
func paragraphLayout(doc *goquery.Document) []func() Block {
	var blocks []func() Block
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		node := p.Nodes[0]
		header := firstContent(node)
		if header == nil || !isHeaderElement(header) {
			return
		}
		blocks = append(blocks, func() Block {
			// everything after the header up to the end of the paragraph,
			// including what follows the anchors it is nested in
			var body strings.Builder
			for n := header; n != nil && n != node; n = n.Parent {
				for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
					body.WriteString(htmlutil.GetBlockText(sibling, isPlanningLink))
					body.WriteByte(' ')
				}
			}
			return Block{
				Header: htmlutil.GetBlockText(header, nil),
				Body:   htmlutil.Normalize(body.String()),
			}
		})
	})
	return blocks
}

// headingLayout handles pages where every listing is a heading followed by
// paragraphs of description.
func headingLayout(doc *goquery.Document) []func() Block {
	var blocks []func() Block
	doc.Find("h3, h4").Each(func(_ int, heading *goquery.Selection) {
		blocks = append(blocks, func() Block {
			var body strings.Builder
			heading.NextUntil("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
				for _, n := range s.Nodes {
					body.WriteString(htmlutil.GetBlockText(n, isPlanningLink))
					body.WriteByte(' ')
				}
			})
			return Block{
				Header: htmlutil.GetBlockText(heading.Nodes[0], nil),
				Body:   htmlutil.Normalize(body.String()),
			}
		})
	})
	return blocks
}
