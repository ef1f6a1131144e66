package live

import "strings"

// Tokenize produces the link tokens of a Markdown document. Fenced code
// blocks and inline code spans are skipped.
func Tokenize(doc string) *Tree {
	var nodes []Node
	offset := 0
	var fence string
	for _, line := range strings.SplitAfter(doc, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```"):
			fence = "```"
		case strings.HasPrefix(trimmed, "~~~"):
			fence = "~~~"
		default:
			nodes = append(nodes, tokenizeLine(line, offset)...)
		}
		offset += len(line)
	}
	return &Tree{Nodes: nodes}
}

func tokenizeLine(line string, base int) []Node {
	var nodes []Node
	add := func(from, to int, name string) {
		if to > from {
			nodes = append(nodes, Node{From: base + from, To: base + to, Name: name})
		}
	}

	for i := 0; i < len(line); {
		switch {
		case line[i] == '`':
			i = skipCode(line, i)

		case strings.HasPrefix(line[i:], "[["), strings.HasPrefix(line[i:], "![["):
			open := i
			if line[i] == '!' {
				open++
			}
			end := strings.Index(line[open+2:], "]]")
			if end < 0 {
				i = open + 2
				continue
			}
			inner := open + 2
			closeAt := inner + end
			if open > i {
				add(i, open, CatFormatting+" "+CatEmbed)
			}
			add(open, inner, CatFormatting+" "+CatLinkStart)
			if pipe := strings.IndexByte(line[inner:closeAt], '|'); pipe >= 0 {
				add(inner, inner+pipe, CatInternal)
				add(inner+pipe, inner+pipe+1, CatInternal+" "+CatAliasPipe)
				add(inner+pipe+1, closeAt, CatInternal+" "+CatAlias)
			} else {
				add(inner, closeAt, CatInternal)
			}
			add(closeAt, closeAt+2, CatFormatting+" "+CatLinkEnd)
			i = closeAt + 2

		case line[i] == '[':
			next, ok := markdownLink(line, i, add)
			if !ok {
				i++
				continue
			}
			i = next

		default:
			i++
		}
	}
	return nodes
}

// markdownLink tokenizes "[text](url)" starting at i.
func markdownLink(line string, i int, add func(from, to int, name string)) (int, bool) {
	closeText := strings.IndexByte(line[i+1:], ']')
	if closeText < 0 {
		return 0, false
	}
	closeText += i + 1
	if strings.ContainsRune(line[i+1:closeText], '[') {
		return 0, false
	}
	if closeText+1 >= len(line) || line[closeText+1] != '(' {
		return 0, false
	}
	closeURL := strings.IndexByte(line[closeText+2:], ')')
	if closeURL < 0 {
		return 0, false
	}
	closeURL += closeText + 2

	add(i, i+1, CatFormatting+" "+CatLinkStart+" "+CatLinkText)
	add(i+1, closeText, CatLinkText)
	add(closeText, closeText+1, CatFormatting+" "+CatLinkEnd+" "+CatLinkText)
	add(closeText+1, closeText+2, CatFormatting+" "+CatLinkString+" "+CatURL)
	add(closeText+2, closeURL, CatURL)
	add(closeURL, closeURL+1, CatFormatting+" "+CatLinkString+" "+CatURL)
	return closeURL + 1, true
}

// skipCode returns the index after the inline code span opened at i, or
// after the backtick run when it is never closed.
func skipCode(line string, i int) int {
	n := 0
	for i+n < len(line) && line[i+n] == '`' {
		n++
	}
	run := strings.Repeat("`", n)
	end := strings.Index(line[i+n:], run)
	if end < 0 {
		return i + n
	}
	return i + n + end + n
}
