package parser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rcliao/specforge/internal/domain"
)

var md = goldmark.New()

type sectionBuilder struct {
	sections []domain.Section
	current  *domain.Section
	lines    []string
}

func (b *sectionBuilder) open(title string, level int) {
	b.close()
	b.current = &domain.Section{Title: title, Level: level}
}

func (b *sectionBuilder) add(lines ...string) {
	// Text before the first heading is not part of any section.
	if b.current == nil {
		return
	}
	b.lines = append(b.lines, lines...)
}

func (b *sectionBuilder) close() {
	if b.current == nil {
		return
	}
	b.current.Content = strings.Join(b.lines, "\n")
	b.sections = append(b.sections, *b.current)
	b.current = nil
	b.lines = nil
}

func parseMarkdown(content string) (*domain.Specification, error) {
	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}

	spec := domain.NewSpecification()
	if meta != nil {
		spec.Metadata = meta
	}

	src := []byte(body)
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		b           sectionBuilder
		haveTitle   bool
		haveSummary bool
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := blockText(node, src, " ")
			if node.Level == 1 && !haveTitle && title != "" {
				spec.Title = title
				haveTitle = true
			}
			b.open(title, node.Level)
		case *ast.Paragraph:
			p := blockText(node, src, "\n")
			if !haveSummary && p != "" {
				spec.Summary = truncateSummary(p)
				haveSummary = true
			}
			b.add(p)
		case *ast.List:
			b.add(renderList(node, src, 0)...)
		case *ast.Blockquote:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if p, ok := c.(*ast.Paragraph); ok {
					b.add(blockText(p, src, "\n"))
				}
			}
		}
	}
	b.close()

	if b.sections != nil {
		spec.Sections = b.sections
	}
	extractAll(spec)
	return spec, nil
}

// blockText joins the trimmed raw source lines of a block node.
func blockText(n ast.Node, src []byte, sep string) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if line := strings.TrimSpace(string(seg.Value(src))); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, sep)
}

// renderList writes each item back out with its marker, nested lists
// indented two spaces per depth.
func renderList(list *ast.List, src []byte, depth int) []string {
	indent := strings.Repeat("  ", depth)
	out := make([]string, 0)
	num := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", num)
			num++
		}

		var texts []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch child := c.(type) {
			case *ast.List:
				nested = append(nested, renderList(child, src, depth+1)...)
			case *ast.TextBlock, *ast.Paragraph:
				if t := blockText(child, src, " "); t != "" {
					texts = append(texts, t)
				}
			}
		}
		out = append(out, indent+marker+" "+strings.Join(texts, " "))
		out = append(out, nested...)
	}
	return out
}
