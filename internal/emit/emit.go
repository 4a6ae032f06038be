// Package emit walks a cleaned content tree in document order and turns it
// into typed blocks and their output lines.
package emit

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/goextract/internal/dom"
	"github.com/hyperifyio/goextract/internal/textnorm"
)

// ContentNotFound is the error reason used when nothing could be emitted.
const ContentNotFound = "content_not_found"

// IntroductionHeading opens the section for content that precedes the
// first heading.
const IntroductionHeading = "Introduction"

// blockSelector lists the only element types the walk visits. Everything
// else is transparent.
const blockSelector = "h2, h3, h4, h5, p, ul, ol, pre, code, blockquote, table"

// Kind tags a Block.
type Kind int

const (
	Heading Kind = iota
	Paragraph
	ListItem
	Quote
	CodeBlock
	InlineCode
	Table
	Error
)

// Block is one typed unit of output.
type Block struct {
	Kind Kind
	// Level is the heading level, 2 to 5.
	Level int
	Text  string
	// Ordered and Index describe list items; Index is 1-based.
	Ordered bool
	Index   int
	// Rows holds code block lines or table rows.
	Rows []string
}

// Lines renders the block in the output grammar.
func (b Block) Lines() []string {
	switch b.Kind {
	case Heading:
		return []string{"H" + strconv.Itoa(b.Level) + ": " + b.Text, "Body:"}
	case Paragraph:
		return []string{b.Text}
	case ListItem:
		if b.Ordered {
			return []string{strconv.Itoa(b.Index) + ". " + b.Text}
		}
		return []string{"- " + b.Text}
	case Quote:
		return []string{"> " + b.Text}
	case CodeBlock:
		out := make([]string, 0, len(b.Rows)+2)
		out = append(out, "```")
		out = append(out, b.Rows...)
		return append(out, "```")
	case InlineCode:
		return []string{"`" + b.Text + "`"}
	case Table:
		out := make([]string, 0, len(b.Rows)+2)
		out = append(out, "[TABLE]")
		out = append(out, b.Rows...)
		return append(out, "[/TABLE]")
	case Error:
		return []string{"ERROR: " + b.Text}
	}
	return nil
}

// Render flattens blocks into output lines.
func Render(blocks []Block) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, b.Lines()...)
	}
	return out
}

// Lines is Render(Blocks(t)).
func Lines(t *dom.Tree) []string { return Render(Blocks(t)) }

// Blocks walks t in document order. Every matching element is visited at
// any depth, so a paragraph inside a quote is emitted by both. Lists only
// consume their direct items; nested lists are visited on their own. The
// Introduction section opens on the first non-heading match even if that
// element itself yields nothing. An empty walk yields a single Error block.
func Blocks(t *dom.Tree) []Block {
	var blocks []Block
	if t != nil {
		opened := false
		t.Find(blockSelector).Each(func(_ int, el *goquery.Selection) {
			name := strings.ToLower(goquery.NodeName(el))
			if level, ok := headingLevel(name); ok {
				text := textnorm.Line(dom.VisibleText(el))
				if text == "" {
					return
				}
				blocks = append(blocks, Block{Kind: Heading, Level: level, Text: text})
				opened = true
				return
			}
			if !opened {
				blocks = append(blocks, Block{Kind: Heading, Level: 2, Text: IntroductionHeading})
				opened = true
			}
			switch name {
			case "p":
				blocks = appendParagraph(blocks, el)
			case "ul", "ol":
				blocks = appendList(blocks, el, name == "ol")
			case "blockquote":
				blocks = appendQuote(blocks, el)
			case "pre":
				blocks = append(blocks, codeBlock(el))
			case "code":
				blocks = appendInlineCode(blocks, el)
			case "table":
				blocks = appendTable(blocks, el)
			}
		})
	}
	if len(blocks) == 0 {
		return []Block{{Kind: Error, Text: ContentNotFound}}
	}
	return blocks
}

func headingLevel(name string) (int, bool) {
	switch name {
	case "h2":
		return 2, true
	case "h3":
		return 3, true
	case "h4":
		return 4, true
	case "h5":
		return 5, true
	}
	return 0, false
}

func appendParagraph(blocks []Block, el *goquery.Selection) []Block {
	if text := textnorm.Line(dom.VisibleText(el)); text != "" {
		blocks = append(blocks, Block{Kind: Paragraph, Text: text})
	}
	return blocks
}

// appendList numbers items by position, so skipped empty items still
// advance the counter.
func appendList(blocks []Block, el *goquery.Selection, ordered bool) []Block {
	el.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		if text := textnorm.Line(dom.VisibleText(li)); text != "" {
			blocks = append(blocks, Block{Kind: ListItem, Ordered: ordered, Index: i + 1, Text: text})
		}
	})
	return blocks
}

func appendQuote(blocks []Block, el *goquery.Selection) []Block {
	for _, line := range textnorm.SplitLines(dom.JoinText(el, "\n", true)) {
		if text := textnorm.Space(line); text != "" {
			blocks = append(blocks, Block{Kind: Quote, Text: text})
		}
	}
	return blocks
}

// codeBlock keeps the extracted text verbatim apart from trailing newlines.
func codeBlock(el *goquery.Selection) Block {
	text := strings.TrimRight(dom.JoinText(el, "\n", false), "\n")
	return Block{Kind: CodeBlock, Rows: textnorm.SplitLines(text)}
}

func appendInlineCode(blocks []Block, el *goquery.Selection) []Block {
	if el.Parent().Is("pre") {
		return blocks
	}
	if text := textnorm.Line(dom.VisibleText(el)); text != "" {
		blocks = append(blocks, Block{Kind: InlineCode, Text: text})
	}
	return blocks
}

func appendTable(blocks []Block, el *goquery.Selection) []Block {
	var rows []string
	el.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, textnorm.Line(dom.VisibleText(cell)))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	if len(rows) > 0 {
		blocks = append(blocks, Block{Kind: Table, Rows: rows})
	}
	return blocks
}
