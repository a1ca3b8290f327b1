package expr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Token is a lexical token scanned from an expression.
type Token struct {
	// Kind is the type of the token.
	Kind TokenKind
	// Text is the source text of the token.
	Text string
	// Num is the value of a TokenNum. It is zero for other kinds.
	Num float64
	// Pos is the 1-based rune column of the first rune of the token.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the type of a token.
type TokenKind int8

const (
	// TokenNone is the zero TokenKind. The tokenizer never produces it.
	TokenNone TokenKind = iota
	// TokenNum is a number literal.
	TokenNum
	// TokenIdent is a variable name.
	TokenIdent
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenCaret
	// TokenOpen and TokenClose are parentheses.
	TokenOpen
	TokenClose
)

var tokenKindNames = [...]string{
	TokenNone:  "None",
	TokenNum:   "Num",
	TokenIdent: "Ident",
	TokenPlus:  "Plus",
	TokenMinus: "Minus",
	TokenStar:  "Star",
	TokenSlash: "Slash",
	TokenCaret: "Caret",
	TokenOpen:  "Open",
	TokenClose: "Close",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the runes which are scanned as single-rune tokens.
const Operators = "+-*/^()"

var operkinds = [...]TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenCaret, TokenOpen, TokenClose}

// Tokenizer lazily scans tokens from an expression. A Tokenizer cannot be
// rewound; to scan the same text again, create a new one.
type Tokenizer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	done bool
}

// NewTokenizer creates a tokenizer reading from src.
func NewTokenizer(src io.RuneScanner) *Tokenizer {
	return &Tokenizer{src: src}
}

// Tokenize creates a tokenizer over text.
func Tokenize(text string) *Tokenizer {
	return NewTokenizer(strings.NewReader(text))
}

// Tokens scans all tokens in text.
func Tokens(text string) ([]Token, error) {
	var r []Token
	l := Tokenize(text)
	for {
		tok, err := l.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r, nil
			}
			return r, err
		}
		r = append(r, tok)
	}
}

// readRune reads a rune from the src and updates the tokenizer's position.
func (l *Tokenizer) readRune() (rune, error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the tokenizer's
// position. Panics if unreading returns an error.
func (l *Tokenizer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// Next scans the next token. Once the input is exhausted, or once a rune that
// cannot begin a token is found, the result is io.EOF on every call. A number
// that does not form a valid float results in a *LexError.
func (l *Tokenizer) Next() (Token, error) {
	if l.done {
		return Token{}, io.EOF
	}
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			l.done = true
			return Token{}, err
		}
		tok := Token{Pos: l.rune}
		switch {
		case unicode.IsSpace(r):
			continue
		case isdigit(r):
			l.unreadRune()
			if err := l.scanNum(&tok); err != nil {
				l.done = true
				return Token{}, err
			}
			return tok, nil
		case unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				l.done = true
				return Token{}, err
			}
			tok.Kind = TokenIdent
			tok.Text = l.buf.String()
			return tok, nil
		default:
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.Kind = operkinds[k]
				tok.Text = Operators[k : k+1]
				return tok, nil
			}
			// Anything else ends the token stream. The parser decides whether
			// that is an error.
			l.unreadRune()
			l.done = true
			return Token{}, io.EOF
		}
	}
}

func (l *Tokenizer) scanNum(tok *Token) error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if !isdigit(r) && r != '.' {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
	}
	text := l.buf.String()
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return l.error("number")
	}
	tok.Kind = TokenNum
	tok.Text = text
	tok.Num = v
	return nil
}

func (l *Tokenizer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

func isdigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func (l *Tokenizer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}
