package syntax

import "strings"

// DefaultMaxDepth bounds expression nesting when no limit is configured.
const DefaultMaxDepth = 64

// Parser parses expression tokens into an AST
type Parser struct {
	tokens   []*Token
	current  int
	depth    int
	maxDepth int
}

// NewParser creates a parser over tokens. A maxDepth of zero or less uses
// DefaultMaxDepth.
func NewParser(tokens []*Token, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{tokens: tokens, maxDepth: maxDepth}
}

// ParseFilter tokenizes and parses a $filter expression.
func ParseFilter(text string, maxDepth int) (ASTNode, error) {
	tokens, err := NewTokenizer(text).TokenizeAll()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, maxDepth).Parse()
}

// ParseOrderBy tokenizes and parses an $orderby expression.
func ParseOrderBy(text string, maxDepth int) ([]OrderByItem, error) {
	tokens, err := NewTokenizer(text).TokenizeAll()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, maxDepth).ParseOrderBy()
}

func (p *Parser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		return &Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return token
}

func (p *Parser) expect(tokenType TokenType) (*Token, error) {
	token := p.currentToken()
	if token.Type != tokenType {
		return nil, errorf(token.Pos, "expected %s, got %s", tokenType, describe(token))
	}
	p.advance()
	return token, nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return wrapf(ErrMaxDepth, p.currentToken().Pos, "expression nesting exceeds %d levels", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

func describe(token *Token) string {
	if token.Type == TokenEOF || token.Value == "" {
		return token.Type.String()
	}
	return token.Type.String() + " '" + token.Value + "'"
}

// Parse parses a complete boolean or value expression.
func (p *Parser) Parse() (ASTNode, error) {
	if p.currentToken().Type == TokenEOF {
		return nil, errorf(0, "empty expression")
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if token := p.currentToken(); token.Type != TokenEOF {
		return nil, errorf(token.Pos, "unexpected %s after expression", describe(token))
	}
	return node, nil
}

// ParseOrderBy parses a comma separated list of expressions, each followed
// by an optional asc or desc.
func (p *Parser) ParseOrderBy() ([]OrderByItem, error) {
	if p.currentToken().Type == TokenEOF {
		return nil, errorf(0, "empty expression")
	}

	var items []OrderByItem
	for {
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		item := OrderByItem{Expr: expr}

		if token := p.currentToken(); token.Type == TokenIdentifier {
			switch strings.ToLower(token.Value) {
			case "asc":
				p.advance()
			case "desc":
				item.Descending = true
				p.advance()
			default:
				return nil, errorf(token.Pos, "invalid direction '%s', expected 'asc' or 'desc'", token.Value)
			}
		}
		items = append(items, item)

		token := p.currentToken()
		if token.Type == TokenEOF {
			return items, nil
		}
		if token.Type != TokenComma {
			return nil, errorf(token.Pos, "unexpected %s in orderby", describe(token))
		}
		p.advance()
	}
}

// parseOr handles OR expressions (lowest precedence)
func (p *Parser) parseOr() (ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenLogical && p.currentToken().Value == "or" {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// parseAnd handles AND expressions
func (p *Parser) parseAnd() (ASTNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenLogical && p.currentToken().Value == "and" {
		op := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// parseNot handles NOT expressions; not binds tighter than and/or and
// looser than comparisons.
func (p *Parser) parseNot() (ASTNode, error) {
	if p.currentToken().Type != TokenNot {
		return p.parseComparison()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	op := p.advance()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Operator: op.Value, Operand: operand, Pos: op.Pos}, nil
}

// parseComparison handles comparison expressions
func (p *Parser) parseComparison() (ASTNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if p.currentToken().Type != TokenOperator {
		return left, nil
	}

	op := p.advance()
	var right ASTNode
	if op.Value == "in" {
		right, err = p.parseCollection()
	} else {
		right, err = p.parseAdditive()
	}
	if err != nil {
		return nil, err
	}
	return &ComparisonExpr{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}, nil
}

// parseCollection parses the list of an in operator: (v1, v2, ...)
func (p *Parser) parseCollection() (ASTNode, error) {
	open, err := p.expect(TokenLParen)
	if err != nil {
		return nil, err
	}

	collection := &CollectionExpr{Pos: open.Pos}
	if p.currentToken().Type != TokenRParen {
		for {
			value, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			collection.Values = append(collection.Values, value)

			if p.currentToken().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return collection, nil
}

// parseAdditive handles add and sub
func (p *Parser) parseAdditive() (ASTNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenArithmetic &&
		(p.currentToken().Value == "add" || p.currentToken().Value == "sub") {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// parseMultiplicative handles mul, div and mod
func (p *Parser) parseMultiplicative() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenArithmetic &&
		(p.currentToken().Value == "mul" || p.currentToken().Value == "div" || p.currentToken().Value == "mod") {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// parseUnary handles arithmetic negation
func (p *Parser) parseUnary() (ASTNode, error) {
	if p.currentToken().Type != TokenMinus {
		return p.parsePostfix()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	op := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Operator: op.Value, Operand: operand, Pos: op.Pos}, nil
}

// parsePostfix parses a primary expression followed by path segments
// (A/B, A/NS.Type, A/any(x: ...)).
func (p *Parser) parsePostfix() (ASTNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.currentToken().Type == TokenSlash {
		slash := p.advance()
		segment := p.currentToken()
		if segment.Type != TokenIdentifier {
			return nil, errorf(segment.Pos, "expected identifier after '/', got %s", describe(segment))
		}
		p.advance()

		operator := segment.Value
		if (operator == "any" || operator == "all") && p.currentToken().Type == TokenLParen {
			node, err = p.parseLambda(node, operator, slash.Pos)
			if err != nil {
				return nil, err
			}
			continue
		}

		node = &MemberExpr{Source: node, Name: segment.Value, Pos: segment.Pos}
	}

	return node, nil
}

// parseLambda parses the parenthesized part of any(v: body) / all(v: body)
func (p *Parser) parseLambda(source ASTNode, operator string, pos int) (ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advance() // consume '('
	lambda := &LambdaExpr{Source: source, Operator: operator, Pos: pos}

	if p.currentToken().Type == TokenRParen {
		p.advance()
		return lambda, nil
	}

	variable, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	lambda.Variable = variable.Value
	lambda.Body = body
	return lambda, nil
}

// parsePrimary handles literals, identifiers, function calls and grouped expressions
func (p *Parser) parsePrimary() (ASTNode, error) {
	token := p.currentToken()

	switch token.Type {
	case TokenLParen:
		return p.parseGroupedExpression()
	case TokenIdentifier:
		p.advance()
		if p.currentToken().Type == TokenLParen {
			return p.parseFunctionCall(token)
		}
		return &MemberExpr{Name: token.Value, Pos: token.Pos}, nil
	}

	literal, err := p.parseLiteral(token)
	if err != nil {
		return nil, err
	}
	if literal != nil {
		p.advance()
		return literal, nil
	}

	return nil, errorf(token.Pos, "unexpected %s", describe(token))
}

func (p *Parser) parseGroupedExpression() (ASTNode, error) {
	open := p.advance()
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &GroupExpr{Expr: expr, Pos: open.Pos}, nil
}

// parseFunctionCall parses name(arg, ...)
func (p *Parser) parseFunctionCall(name *Token) (ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advance() // consume '('
	call := &FunctionCallExpr{Function: name.Value, Pos: name.Pos}

	if p.currentToken().Type != TokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)

			if p.currentToken().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return call, nil
}
