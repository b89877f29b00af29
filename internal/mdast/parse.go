package mdast

import (
	"log/slog"
	"unicode/utf8"
)

// Rule pairs a classifier with the consumer that builds its node.
type Rule struct {
	Type    ContentType
	Match   Classifier
	Consume Consumer
}

// DefaultRules returns the dispatch table in priority order. Chapter comes
// before PlainText so a header opener is never degraded to plain text.
func DefaultRules() []Rule {
	return []Rule{
		{Type: TypeChapter, Match: IsChapter, Consume: ConsumeChapter},
		{Type: TypeDefault, Match: IsPlainText, Consume: ConsumePlainText},
	}
}

// Parser turns markdown text into a chapter tree. A Parser is stateless
// between calls and safe for concurrent use.
type Parser struct {
	rules []Rule
	log   *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithRules replaces the dispatch table. Rules are tried in order.
func WithRules(rules ...Rule) Option {
	return func(p *Parser) {
		p.rules = append([]Rule(nil), rules...)
	}
}

// NewParser creates a parser using DefaultRules. A nil logger discards
// debug output.
func NewParser(log *slog.Logger, opts ...Option) *Parser {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Parser{rules: DefaultRules(), log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules returns a copy of the parser's dispatch table.
func (p *Parser) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

var defaultParser = NewParser(nil)

// Parse parses text with the default parser.
func Parse(text string) ([]Node, error) {
	return defaultParser.Parse(text)
}

// frame is one span being scanned: the whole document, or the body of an
// open chapter. Chapter bodies are pushed as frames instead of recursing,
// so nesting costs one frame per open chapter.
type frame struct {
	pos   int // next unread byte
	mark  int // start of the accumulated buffer, src[mark:pos]
	end   int // end of this span
	owner *Chapter
	nodes []Node
}

// Parse returns the top-level nodes of text. Input that does not end in a
// newline gets one appended first. The first structural error aborts the
// whole parse; no partial tree is returned.
func (p *Parser) Parse(text string) ([]Node, error) {
	src := normalize(text)
	root := &frame{end: len(src)}
	stack := []*frame{root}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.pos >= f.end {
			if f.mark < f.end {
				// Span ended mid-line without a match.
				if err := p.flush(src, f); err != nil {
					return nil, err
				}
				continue
			}
			stack = stack[:len(stack)-1]
			if f.owner != nil {
				f.owner.Children = f.nodes
				f.owner.Raw += RawText(f.nodes)
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(src[f.pos:f.end])
		f.pos += size
		next := EOF
		if f.pos < f.end {
			next, _ = utf8.DecodeRuneInString(src[f.pos:f.end])
		}

		tok, matched, err := p.dispatch(src[:f.end], src[f.mark:f.pos], f.mark, next)
		if err != nil {
			return nil, err
		}
		if !matched {
			if r == '\n' {
				// No rule claimed the line: keep it as plain text.
				if err := p.flush(src, f); err != nil {
					return nil, err
				}
			}
			continue
		}

		f.nodes = append(f.nodes, tok.Node)
		f.pos, f.mark = tok.End, tok.End

		if ch, ok := tok.Node.(*Chapter); ok && tok.Body != nil {
			if len(stack) > MaxLevel {
				return nil, structuralError(KindDepth, src, tok.Body.Start)
			}
			stack = append(stack, &frame{
				pos:   tok.Body.Start,
				mark:  tok.Body.Start,
				end:   tok.Body.End,
				owner: ch,
			})
		}
	}

	return root.nodes, nil
}

// dispatch tries each rule against buf and consumes from start with the
// first that matches.
func (p *Parser) dispatch(src, buf string, start int, next rune) (Token, bool, error) {
	for _, rule := range p.rules {
		if !rule.Match(buf, next) {
			continue
		}
		p.log.Debug("rule matched", "type", rule.Type, "offset", start)
		tok, err := rule.Consume(src, start)
		if err != nil {
			return Token{}, false, err
		}
		if tok.End <= start || tok.Node == nil {
			return Token{}, false, structuralError(KindStalled, src, start)
		}
		return tok, true, nil
	}
	return Token{}, false, nil
}

func (p *Parser) flush(src string, f *frame) error {
	tok, err := ConsumePlainText(src[:f.end], f.mark)
	if err != nil {
		return err
	}
	if tok.End <= f.mark {
		return structuralError(KindStalled, src, f.mark)
	}
	f.nodes = append(f.nodes, tok.Node)
	f.pos, f.mark = tok.End, tok.End
	return nil
}

func normalize(text string) string {
	if text != "" && text[len(text)-1] != '\n' {
		return text + "\n"
	}
	return text
}
