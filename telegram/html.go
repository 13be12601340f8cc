// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
				extension.TaskList,
			),
		)
	})
	return markdownParserInstance
}

// RenderHTML converts CommonMark into Telegram's HTML subset (b, i, s,
// code, pre, a, blockquote). Headings become bold lines, list items get
// textual bullets, and every other character is escaped. Line breaks
// inside a paragraph are kept: chat text is not hard-wrapped prose.
func RenderHTML(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	source := []byte(markdown)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	renderer := &htmlRenderer{source: source}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// EscapeHTML escapes text for inclusion in a parse_mode=HTML message.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// htmlRenderer walks a goldmark AST and writes Telegram HTML. Block
// separation is tracked through the count of trailing newlines so
// nested containers never emit more than one blank line.
type htmlRenderer struct {
	source []byte
	output strings.Builder

	listStack        []listState
	trailingNewlines int
	// linkOpen records, per open link, whether an <a> tag was written.
	linkOpen []bool
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (renderer *htmlRenderer) writeOutput(s string) {
	if s == "" {
		return
	}
	renderer.output.WriteString(s)

	trailing := len(s) - len(strings.TrimRight(s, "\n"))
	if trailing == len(s) {
		renderer.trailingNewlines += trailing
	} else {
		renderer.trailingNewlines = trailing
	}
}

func (renderer *htmlRenderer) ensureNewline() {
	if renderer.output.Len() > 0 && renderer.trailingNewlines < 1 {
		renderer.writeOutput("\n")
	}
}

func (renderer *htmlRenderer) ensureBlankLine() {
	if renderer.output.Len() == 0 {
		return
	}
	for renderer.trailingNewlines < 2 {
		renderer.writeOutput("\n")
	}
}

// trimTrailingNewlines drops block separators before a closing tag.
func (renderer *htmlRenderer) trimTrailingNewlines() {
	if renderer.trailingNewlines == 0 {
		return
	}
	trimmed := strings.TrimRight(renderer.output.String(), "\n")
	renderer.output.Reset()
	renderer.output.WriteString(trimmed)
	renderer.trailingNewlines = 0
}

func (renderer *htmlRenderer) inTightList() bool {
	if len(renderer.listStack) == 0 {
		return false
	}
	return renderer.listStack[len(renderer.listStack)-1].tight
}

func (renderer *htmlRenderer) endBlock() {
	if renderer.inTightList() {
		renderer.ensureNewline()
	} else {
		renderer.ensureBlankLine()
	}
}

func (renderer *htmlRenderer) lines(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		content.Write(segment.Value(renderer.source))
	}
	return strings.TrimRight(content.String(), "\n")
}

func (renderer *htmlRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	// Block nodes.
	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if !entering {
			renderer.endBlock()
		}

	case ast.KindHeading:
		if entering {
			renderer.ensureBlankLine()
			renderer.writeOutput("<b>")
		} else {
			renderer.writeOutput("</b>")
			renderer.ensureBlankLine()
		}

	case ast.KindFencedCodeBlock:
		if entering {
			fenced := node.(*ast.FencedCodeBlock)
			language := string(fenced.Language(renderer.source))
			code := EscapeHTML(renderer.lines(node))
			if language != "" {
				renderer.writeOutput(fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>", EscapeHTML(language), code))
			} else {
				renderer.writeOutput("<pre>" + code + "</pre>")
			}
			renderer.endBlock()
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			renderer.writeOutput("<pre>" + EscapeHTML(renderer.lines(node)) + "</pre>")
			renderer.endBlock()
			return ast.WalkSkipChildren, nil
		}

	case ast.KindHTMLBlock:
		if entering {
			renderer.writeOutput(EscapeHTML(renderer.lines(node)))
			renderer.endBlock()
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			renderer.writeOutput("<blockquote>")
		} else {
			renderer.trimTrailingNewlines()
			renderer.writeOutput("</blockquote>")
			renderer.endBlock()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			renderer.ensureNewline()
			renderer.listStack = append(renderer.listStack, listState{
				ordered: list.IsOrdered(),
				counter: list.Start,
				tight:   list.IsTight,
			})
		} else {
			renderer.listStack = renderer.listStack[:len(renderer.listStack)-1]
			renderer.endBlock()
		}

	case ast.KindListItem:
		if entering {
			renderer.enterListItem()
		} else {
			renderer.ensureNewline()
		}

	case ast.KindThematicBreak:
		if entering {
			renderer.ensureBlankLine()
			renderer.writeOutput("——————")
			renderer.ensureBlankLine()
		}

	// Inline nodes.
	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			renderer.writeOutput(EscapeHTML(string(textNode.Segment.Value(renderer.source))))
			if textNode.SoftLineBreak() || textNode.HardLineBreak() {
				renderer.writeOutput("\n")
			}
		}

	case ast.KindString:
		if entering {
			renderer.writeOutput(EscapeHTML(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		tag := "i"
		if node.(*ast.Emphasis).Level >= 2 {
			tag = "b"
		}
		if entering {
			renderer.writeOutput("<" + tag + ">")
		} else {
			renderer.writeOutput("</" + tag + ">")
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				switch typed := child.(type) {
				case *ast.Text:
					code.Write(typed.Segment.Value(renderer.source))
				case *ast.String:
					code.Write(typed.Value)
				}
			}
			renderer.writeOutput("<code>" + EscapeHTML(code.String()) + "</code>")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		renderer.handleLink(string(node.(*ast.Link).Destination), entering)

	case ast.KindImage:
		renderer.handleLink(string(node.(*ast.Image).Destination), entering)

	case ast.KindAutoLink:
		if entering {
			autoLink := node.(*ast.AutoLink)
			destination := string(autoLink.URL(renderer.source))
			label := EscapeHTML(string(autoLink.Label(renderer.source)))
			if safeLink(destination) {
				renderer.writeOutput("<a href=\"" + EscapeHTML(destination) + "\">" + label + "</a>")
			} else {
				renderer.writeOutput(label)
			}
		}

	case ast.KindRawHTML:
		if entering {
			raw := node.(*ast.RawHTML)
			for index := 0; index < raw.Segments.Len(); index++ {
				segment := raw.Segments.At(index)
				renderer.writeOutput(EscapeHTML(string(segment.Value(renderer.source))))
			}
		}

	// Extension nodes.
	case extast.KindStrikethrough:
		if entering {
			renderer.writeOutput("<s>")
		} else {
			renderer.writeOutput("</s>")
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				renderer.writeOutput("☑ ")
			} else {
				renderer.writeOutput("☐ ")
			}
		}
	}

	return ast.WalkContinue, nil
}

func (renderer *htmlRenderer) enterListItem() {
	if len(renderer.listStack) == 0 {
		return
	}
	top := &renderer.listStack[len(renderer.listStack)-1]

	indent := strings.Repeat("  ", len(renderer.listStack)-1)
	if top.ordered {
		renderer.writeOutput(fmt.Sprintf("%s%d. ", indent, top.counter))
		top.counter++
	} else {
		renderer.writeOutput(indent + "• ")
	}
}

// handleLink writes an anchor for safe destinations. Unsafe or empty
// destinations render the link text alone.
func (renderer *htmlRenderer) handleLink(destination string, entering bool) {
	if entering {
		open := safeLink(destination)
		renderer.linkOpen = append(renderer.linkOpen, open)
		if open {
			renderer.writeOutput("<a href=\"" + EscapeHTML(destination) + "\">")
		}
		return
	}
	last := len(renderer.linkOpen) - 1
	if renderer.linkOpen[last] {
		renderer.writeOutput("</a>")
	}
	renderer.linkOpen = renderer.linkOpen[:last]
}

// safeLink accepts the schemes Telegram clients open.
func safeLink(destination string) bool {
	parsed, err := url.Parse(destination)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "tg", "mailto":
		return true
	}
	return false
}
