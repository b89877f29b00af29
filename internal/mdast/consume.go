package mdast

import "strings"

// Span is a half-open byte range [Start, End) of the source.
type Span struct {
	Start int
	End   int
}

// Token is the result of a consume step.
type Token struct {
	Node Node
	End  int // offset of the unconsumed remainder
	// Body is the span still to be parsed into the node's children. Only
	// chapters carry one.
	Body *Span
}

// Consumer carves one token off src starting at byte offset start. The
// prefix at start has already been accepted by the matching Classifier.
type Consumer func(src string, start int) (Token, error)

// ConsumePlainText takes the rest of the line at start.
func ConsumePlainText(src string, start int) (Token, error) {
	line, end := splitLine(src, start)
	raw := src[start:end]
	if !strings.HasSuffix(raw, "\n") {
		raw = line + "\n"
	}
	return Token{
		Node: &PlainText{Content: line, Raw: raw},
		End:  end,
	}, nil
}

// ConsumeHeader takes a header line: the hash run gives the level and the
// text after the following space is the content.
func ConsumeHeader(src string, start int) (Token, error) {
	h, end, err := consumeHeader(src, start)
	if err != nil {
		return Token{}, err
	}
	return Token{Node: h, End: end}, nil
}

// ConsumeChapter takes a header line and every following line up to, but
// not including, the next opener whose level is at or above the header's
// (same or fewer hashes). Those lines are the chapter body; the driver
// parses them into the chapter's children.
func ConsumeChapter(src string, start int) (Token, error) {
	h, bodyStart, err := consumeHeader(src, start)
	if err != nil {
		return Token{}, err
	}

	pos := bodyStart
	for pos < len(src) {
		line, next := splitLine(src, pos)
		if lvl := openerLevel(line); lvl != 0 && lvl <= h.Level {
			break
		}
		pos = next
	}

	return Token{
		Node: &Chapter{
			Header:  h,
			Content: h.Content,
			Raw:     h.Raw,
		},
		End:  pos,
		Body: &Span{Start: bodyStart, End: pos},
	}, nil
}

func consumeHeader(src string, start int) (*Header, int, error) {
	level := hashRun(src[start:])
	if !validLevel(level) {
		return nil, 0, structuralError(KindHeaderLevel, src, start)
	}
	sp := start + level
	if sp >= len(src) || src[sp] != ' ' {
		return nil, 0, structuralError(KindHeaderShape, src, start)
	}
	content, end := splitLine(src, sp+1)
	return newHeader(level, content), end, nil
}

// splitLine returns the line starting at start, without its newline, and
// the offset just past the newline (len(src) when there is none).
func splitLine(src string, start int) (string, int) {
	i := strings.IndexByte(src[start:], '\n')
	if i < 0 {
		return src[start:], len(src)
	}
	return src[start : start+i], start + i + 1
}
