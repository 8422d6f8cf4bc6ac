package osmxml

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"unicode/utf8"
)

type eventKind int

const (
	startEvent eventKind = iota
	// emptyEvent is a self-closing element. encoding/xml reports these
	// as start followed by end, other tokenizers may not.
	emptyEvent
	endEvent
	eofEvent
)

type event struct {
	kind eventKind
	name string
	attr []xml.Attr
	// encErr describes invalid input that was replaced inside this
	// start element.
	encErr string
}

// tokenizer delivers element events in document order. Attribute values
// are already unescaped.
type tokenizer interface {
	next() (event, error)
	offset() int64
}

type xmlTokenizer struct {
	dec *xml.Decoder
	in  *cleanReader
}

func newXMLTokenizer(r io.Reader) *xmlTokenizer {
	in := newCleanReader(r)
	return &xmlTokenizer{dec: xml.NewDecoder(in), in: in}
}

func (t *xmlTokenizer) next() (event, error) {
	for {
		begin := t.dec.InputOffset()
		token, err := t.dec.Token()
		if err == io.EOF {
			return event{kind: eofEvent}, nil
		}
		if err != nil {
			return event{}, err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			return event{
				kind:   startEvent,
				name:   tok.Name.Local,
				attr:   tok.Attr,
				encErr: t.in.issueIn(begin, t.dec.InputOffset()),
			}, nil
		case xml.EndElement:
			return event{kind: endEvent, name: tok.Name.Local}, nil
		}
		// char data, comments, procinst, directives
	}
}

func (t *xmlTokenizer) offset() int64 {
	return t.dec.InputOffset()
}

type byteReader interface {
	io.Reader
	io.ByteReader
	Peek(n int) ([]byte, error)
	Discard(n int) (int, error)
	Buffered() int
}

type encodingIssue struct {
	offset int64
	msg    string
}

// cleanReader replaces invalid UTF-8 sequences with U+FFFD and escapes
// ampersands that do not start a valid reference, so that encoding/xml
// can continue. The offsets of all replacements are recorded.
type cleanReader struct {
	r       byteReader
	pending []byte
	off     int64
	issues  []encodingIssue
}

func newCleanReader(r io.Reader) *cleanReader {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &cleanReader{r: br}
}

func (c *cleanReader) ReadByte() (byte, error) {
	if len(c.pending) > 0 {
		b := c.pending[0]
		c.pending = c.pending[1:]
		c.off++
		return b, nil
	}
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b == '&':
		if msg := c.checkReference(); msg != "" {
			c.issues = append(c.issues, encodingIssue{c.off, msg})
			c.pending = append(c.pending[:0], "amp;"...)
		}
	case b >= utf8.RuneSelf:
		var seq [utf8.UTFMax]byte
		seq[0] = b
		peek, _ := c.r.Peek(utf8.UTFMax - 1)
		n := 1 + copy(seq[1:], peek)
		r, size := utf8.DecodeRune(seq[:n])
		if r == utf8.RuneError && size == 1 {
			c.issues = append(c.issues, encodingIssue{c.off, "invalid UTF-8 sequence"})
			c.pending = append(c.pending[:0], "\uFFFD"...)
			return c.ReadByte()
		}
		c.r.Discard(size - 1)
		c.pending = append(c.pending[:0], seq[1:size]...)
	}
	c.off++
	return b, nil
}

// Read serves callers that do not use ReadByte.
func (c *cleanReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if n > 0 && len(c.pending) == 0 && c.r.Buffered() == 0 {
			break
		}
		b, err := c.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

const maxEntityLen = 32

// checkReference checks the input after an ampersand. It returns an
// empty string for predefined entities and character references.
func (c *cleanReader) checkReference() string {
	peek, _ := c.r.Peek(maxEntityLen + 1)
	for i, b := range peek {
		if b != ';' {
			continue
		}
		name := string(peek[:i])
		switch {
		case name == "amp", name == "lt", name == "gt", name == "apos", name == "quot":
			return ""
		case isCharRef(name):
			return ""
		case isEntityName(name):
			return fmt.Sprintf("unknown entity &%s;", name)
		}
		break
	}
	return "unescaped ampersand"
}

func isCharRef(s string) bool {
	if len(s) < 2 || s[0] != '#' {
		return false
	}
	digits := s[1:]
	hex := false
	if digits[0] == 'x' {
		digits = digits[1:]
		hex = true
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		b := digits[i]
		switch {
		case b >= '0' && b <= '9':
		case hex && (b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'):
		default:
			return false
		}
	}
	return true
}

func isEntityName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_', b == ':':
		case i > 0 && (b >= '0' && b <= '9' || b == '-' || b == '.'):
		default:
			return false
		}
	}
	return true
}

// issueIn returns the first recorded issue within [begin, end) and
// forgets all issues before end.
func (c *cleanReader) issueIn(begin, end int64) string {
	msg := ""
	i := 0
	for ; i < len(c.issues) && c.issues[i].offset < end; i++ {
		if msg == "" && c.issues[i].offset >= begin {
			msg = c.issues[i].msg
		}
	}
	c.issues = c.issues[i:]
	return msg
}
