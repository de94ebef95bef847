package syntax

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenString
	TokenNumber
	TokenGuid
	TokenDate
	TokenDateTimeOffset
	TokenBoolean
	TokenNull
	TokenOperator
	TokenLogical
	TokenNot
	TokenArithmetic
	TokenMinus
	TokenLParen
	TokenRParen
	TokenComma
	TokenSlash
	TokenColon
)

var tokenTypeNames = [...]string{
	TokenEOF:            "end of input",
	TokenIdentifier:     "identifier",
	TokenString:         "string",
	TokenNumber:         "number",
	TokenGuid:           "guid",
	TokenDate:           "date",
	TokenDateTimeOffset: "datetimeoffset",
	TokenBoolean:        "boolean",
	TokenNull:           "null",
	TokenOperator:       "operator",
	TokenLogical:        "logical operator",
	TokenNot:            "not",
	TokenArithmetic:     "arithmetic operator",
	TokenMinus:          "'-'",
	TokenLParen:         "'('",
	TokenRParen:         "')'",
	TokenComma:          "','",
	TokenSlash:          "'/'",
	TokenColon:          "':'",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "unknown"
}

// Token represents a single token in an expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Tokenizer tokenizes OData expressions
type Tokenizer struct {
	input string
	pos   int
	ch    rune
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	if len(input) > 0 {
		t.ch = rune(input[0])
	}
	return t
}

func (t *Tokenizer) advance() {
	t.pos++
	if t.pos >= len(t.input) {
		t.ch = 0
	} else {
		t.ch = rune(t.input[t.pos])
	}
}

func (t *Tokenizer) peek() rune {
	if t.pos+1 >= len(t.input) {
		return 0
	}
	return rune(t.input[t.pos+1])
}

func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' || t.ch == '\n' || t.ch == '\r' {
		t.advance()
	}
}

// readString reads a single quoted string; a doubled quote is an escaped quote.
func (t *Tokenizer) readString() (string, error) {
	start := t.pos
	t.advance()

	var result strings.Builder
	for {
		if t.ch == 0 {
			return "", wrapf(errUnterminatedString, start, "unterminated string literal")
		}
		if t.ch == '\'' {
			if t.peek() != '\'' {
				t.advance()
				return result.String(), nil
			}
			t.advance()
		}
		result.WriteByte(byte(t.ch))
		t.advance()
	}
}

func (t *Tokenizer) readDigits(result *strings.Builder) int {
	n := 0
	for unicode.IsDigit(t.ch) {
		result.WriteRune(t.ch)
		t.advance()
		n++
	}
	return n
}

// readNumber reads an integer or floating point literal with an optional
// type suffix (L, M, D, F).
func (t *Tokenizer) readNumber() (string, error) {
	start := t.pos
	var result strings.Builder

	if t.ch == '-' {
		result.WriteRune(t.ch)
		t.advance()
	}
	t.readDigits(&result)

	if t.ch == '.' {
		result.WriteRune(t.ch)
		t.advance()
		if t.readDigits(&result) == 0 {
			return "", wrapf(errInvalidNumber, start, "invalid number %q", result.String())
		}
	}

	if t.ch == 'e' || t.ch == 'E' {
		result.WriteRune(t.ch)
		t.advance()
		if t.ch == '+' || t.ch == '-' {
			result.WriteRune(t.ch)
			t.advance()
		}
		if t.readDigits(&result) == 0 {
			return "", wrapf(errInvalidNumber, start, "invalid number %q", result.String())
		}
	}

	switch t.ch {
	case 'L', 'l', 'M', 'm', 'D', 'd', 'F', 'f':
		result.WriteRune(unicode.ToUpper(t.ch))
		t.advance()
	}

	if isIdentifierChar(t.ch) {
		return "", wrapf(errInvalidNumber, start, "invalid number %q", t.input[start:t.pos+1])
	}
	return result.String(), nil
}

func isIdentifierStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}

func isIdentifierChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// readIdentifier reads a possibly namespace qualified identifier
// (e.g. Name, $it, Namespace.Type).
func (t *Tokenizer) readIdentifier() string {
	var result strings.Builder
	result.WriteRune(t.ch)
	t.advance()

	for {
		for isIdentifierChar(t.ch) {
			result.WriteRune(t.ch)
			t.advance()
		}
		if t.ch != '.' || !isIdentifierStart(t.peek()) {
			return result.String()
		}
		result.WriteRune(t.ch)
		t.advance()
	}
}

// NextToken returns the next token
func (t *Tokenizer) NextToken() (*Token, error) {
	t.skipWhitespace()

	if t.ch == 0 {
		return &Token{Type: TokenEOF, Pos: t.pos}, nil
	}

	pos := t.pos

	if t.ch == '\'' {
		value, err := t.readString()
		if err != nil {
			return nil, err
		}
		return &Token{Type: TokenString, Value: value, Pos: pos}, nil
	}

	if token := t.tokenizeGuid(pos); token != nil {
		return token, nil
	}

	if token := t.tokenizeDate(pos); token != nil {
		return token, nil
	}

	if token := t.tokenizeNegativeInfinity(pos); token != nil {
		return token, nil
	}

	if unicode.IsDigit(t.ch) || (t.ch == '-' && (unicode.IsDigit(t.peek()) || t.peek() == '.')) {
		value, err := t.readNumber()
		if err != nil {
			return nil, err
		}
		return &Token{Type: TokenNumber, Value: value, Pos: pos}, nil
	}

	if token := t.tokenizeSpecialChar(pos); token != nil {
		return token, nil
	}

	if isIdentifierStart(t.ch) {
		return t.tokenizeIdentifierOrKeyword(pos), nil
	}

	return nil, errorf(t.pos, "unexpected character '%c'", t.ch)
}

// tokenizeNegativeInfinity recognizes the -INF literal.
func (t *Tokenizer) tokenizeNegativeInfinity(pos int) *Token {
	const literal = "-INF"
	end := pos + len(literal)
	if !strings.HasPrefix(t.input[pos:], literal) || (end < len(t.input) && isIdentifierChar(rune(t.input[end]))) {
		return nil
	}
	for t.pos < end {
		t.advance()
	}
	return &Token{Type: TokenNumber, Value: literal, Pos: pos}
}

// tokenizeGuid recognizes a bare 8-4-4-4-12 GUID literal.
func (t *Tokenizer) tokenizeGuid(pos int) *Token {
	const guidLen = 36
	if !isHexDigit(t.ch) || len(t.input)-pos < guidLen {
		return nil
	}
	candidate := t.input[pos : pos+guidLen]
	for _, dash := range []int{8, 13, 18, 23} {
		if candidate[dash] != '-' {
			return nil
		}
	}
	if pos+guidLen < len(t.input) && isIdentifierChar(rune(t.input[pos+guidLen])) {
		return nil
	}
	if _, err := uuid.Parse(candidate); err != nil {
		return nil
	}
	for i := 0; i < guidLen; i++ {
		t.advance()
	}
	return &Token{Type: TokenGuid, Value: candidate, Pos: pos}
}

// tokenizeDate recognizes YYYY-MM-DD dates and RFC 3339 date-times.
func (t *Tokenizer) tokenizeDate(pos int) *Token {
	rest := t.input[pos:]
	if len(rest) < 10 || !allDigits(rest[0:4]) || rest[4] != '-' || !allDigits(rest[5:7]) || rest[7] != '-' || !allDigits(rest[8:10]) {
		return nil
	}

	end := 10
	tokenType := TokenDate
	if len(rest) > end && rest[end] == 'T' {
		end++
		for end < len(rest) && strings.IndexByte("0123456789:.+-Z", rest[end]) >= 0 {
			end++
		}
		tokenType = TokenDateTimeOffset
	}

	value := rest[:end]
	for i := 0; i < end; i++ {
		t.advance()
	}
	return &Token{Type: tokenType, Value: value, Pos: pos}
}

func isHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// tokenizeSpecialChar tokenizes punctuation
func (t *Tokenizer) tokenizeSpecialChar(pos int) *Token {
	var tokenType TokenType
	switch t.ch {
	case '(':
		tokenType = TokenLParen
	case ')':
		tokenType = TokenRParen
	case ',':
		tokenType = TokenComma
	case '/':
		tokenType = TokenSlash
	case ':':
		tokenType = TokenColon
	case '-':
		tokenType = TokenMinus
	default:
		return nil
	}
	value := string(t.ch)
	t.advance()
	return &Token{Type: tokenType, Value: value, Pos: pos}
}

// tokenizeIdentifierOrKeyword tokenizes identifiers and keywords
func (t *Tokenizer) tokenizeIdentifierOrKeyword(pos int) *Token {
	value := t.readIdentifier()
	if value == "INF" || value == "NaN" {
		return &Token{Type: TokenNumber, Value: value, Pos: pos}
	}
	lower := strings.ToLower(value)

	// has and the arithmetic keywords double as function names when
	// directly followed by '('.
	switch lower {
	case "has", "add", "sub", "mul", "div", "mod":
		if t.ch == '(' {
			return &Token{Type: TokenIdentifier, Value: value, Pos: pos}
		}
	}

	if token := classifyKeyword(lower, pos); token != nil {
		return token
	}

	return &Token{Type: TokenIdentifier, Value: value, Pos: pos}
}

func classifyKeyword(lower string, pos int) *Token {
	switch lower {
	case "and", "or":
		return &Token{Type: TokenLogical, Value: lower, Pos: pos}
	case "not":
		return &Token{Type: TokenNot, Value: lower, Pos: pos}
	case "true", "false":
		return &Token{Type: TokenBoolean, Value: lower, Pos: pos}
	case "null":
		return &Token{Type: TokenNull, Value: lower, Pos: pos}
	case "eq", "ne", "gt", "ge", "lt", "le", "has", "in":
		return &Token{Type: TokenOperator, Value: lower, Pos: pos}
	case "add", "sub", "mul", "div", "mod":
		return &Token{Type: TokenArithmetic, Value: lower, Pos: pos}
	}
	return nil
}

// TokenizeAll returns all tokens from the input, ending with TokenEOF
func (t *Tokenizer) TokenizeAll() ([]*Token, error) {
	var tokens []*Token

	for {
		token, err := t.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
