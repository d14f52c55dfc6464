package mapfile

import (
	"strings"

	"github.com/mapfile/go/document"
)

// ParseOption configures parsing behavior.
type ParseOption func(*parseConfig)

type parseConfig struct {
	strict bool
}

// Strict makes an unterminated nested block a parse error instead of the
// default lenient behavior, where parsing simply stops at the end of the
// input and the entries read so far are kept. The lenient default matches
// what hand-edited or truncated files have historically relied on.
func Strict() ParseOption {
	return func(c *parseConfig) {
		c.strict = true
	}
}

// Parse decodes text in the mapfile format into a Document containing
// only string leaves and nested Documents. Input is split on newlines;
// a single trailing carriage return per line is dropped so files edited
// on Windows parse the same way.
func Parse(data []byte, opts ...ParseOption) (*document.Document, error) {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return ParseLines(lines, opts...)
}

// ParseLines decodes an ordered sequence of lines into a Document.
//
// Each line is either a terminator ("]" alone, closing the innermost open
// block), an entry ("key=value", split at the first "="), a block opening
// ("key=["), or inert (no "=" at all; skipped). Terminators are not
// counted: nesting is resolved by the recursive descent itself, one
// terminator closing exactly one level. A terminator at the top level,
// where no block is open, stops parsing.
func ParseLines(lines []string, opts ...ParseOption) (*document.Document, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &parser{lines: lines, cfg: cfg}
	root := document.New()
	err := p.parseBlock(root)
	if err != nil && err != errBlockClosed {
		return nil, err
	}
	// A terminator at the top level stops parsing; entries read so far
	// are kept.
	return root, nil
}

// parser is a cursor over the line sequence, shared by all levels of the
// recursive descent.
type parser struct {
	lines []string
	pos   int
	cfg   parseConfig
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	line := p.lines[p.pos]
	p.pos++
	return line, true
}

// parseBlock reads entries into d until it consumes the terminator that
// closes this block or the input runs out.
func (p *parser) parseBlock(d *document.Document) error {
	for {
		line, ok := p.next()
		if !ok {
			return nil
		}

		if strings.TrimSpace(line) == "]" {
			return errBlockClosed
		}

		split := strings.Index(line, "=")
		if split < 0 {
			continue
		}

		key := Unescape(line[:split])
		value := line[split+1:]

		if strings.TrimSpace(value) == "[" {
			child := document.New()
			err := p.parseBlock(child)
			if err == errBlockClosed {
				d.Set(key, child)
				continue
			}
			if err != nil {
				return err
			}
			// Input ended inside the child block.
			if p.cfg.strict {
				return &UnterminatedBlockError{Key: key}
			}
			d.Set(key, child)
			return nil
		}

		d.Set(key, Unescape(value))
	}
}

// errBlockClosed signals that a terminator line was consumed. It never
// escapes the parser.
var errBlockClosed = &blockClosed{}

type blockClosed struct{}

func (*blockClosed) Error() string { return "block closed" }
