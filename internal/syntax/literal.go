package syntax

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseLiteral converts a literal token. It returns nil, nil when the token
// is not a literal and does not advance.
func (p *Parser) parseLiteral(token *Token) (*LiteralExpr, error) {
	switch token.Type {
	case TokenString:
		text := "'" + strings.ReplaceAll(token.Value, "'", "''") + "'"
		return &LiteralExpr{Kind: LiteralString, Value: token.Value, Text: text, Pos: token.Pos}, nil
	case TokenBoolean:
		return &LiteralExpr{Kind: LiteralBoolean, Value: token.Value == "true", Text: token.Value, Pos: token.Pos}, nil
	case TokenNull:
		return &LiteralExpr{Kind: LiteralNull, Text: "null", Pos: token.Pos}, nil
	case TokenNumber:
		return parseNumberLiteral(token)
	case TokenGuid:
		id, err := uuid.Parse(token.Value)
		if err != nil {
			return nil, errorf(token.Pos, "invalid guid %q", token.Value)
		}
		return &LiteralExpr{Kind: LiteralGuid, Value: id, Text: token.Value, Pos: token.Pos}, nil
	case TokenDate:
		d, err := time.Parse("2006-01-02", token.Value)
		if err != nil {
			return nil, errorf(token.Pos, "invalid date %q", token.Value)
		}
		return &LiteralExpr{Kind: LiteralDate, Value: d, Text: token.Value, Pos: token.Pos}, nil
	case TokenDateTimeOffset:
		ts, err := time.Parse(time.RFC3339Nano, token.Value)
		if err != nil {
			return nil, errorf(token.Pos, "invalid datetimeoffset %q", token.Value)
		}
		return &LiteralExpr{Kind: LiteralDateTimeOffset, Value: ts, Text: token.Value, Pos: token.Pos}, nil
	}
	return nil, nil
}

// parseNumberLiteral types a numeric literal. Without a suffix integers are
// Int32 when they fit and Int64 otherwise, and fractional numbers are Double.
func parseNumberLiteral(token *Token) (*LiteralExpr, error) {
	text := token.Value
	switch text {
	case "INF":
		return &LiteralExpr{Kind: LiteralDouble, Value: math.Inf(1), Text: text, Pos: token.Pos}, nil
	case "-INF":
		return &LiteralExpr{Kind: LiteralDouble, Value: math.Inf(-1), Text: text, Pos: token.Pos}, nil
	case "NaN":
		return &LiteralExpr{Kind: LiteralDouble, Value: math.NaN(), Text: text, Pos: token.Pos}, nil
	}
	body := text
	var suffix byte
	if last := text[len(text)-1]; last == 'L' || last == 'M' || last == 'D' || last == 'F' {
		suffix = last
		body = text[:len(text)-1]
	}

	lit := &LiteralExpr{Text: text, Pos: token.Pos}
	invalid := func() (*LiteralExpr, error) {
		return nil, wrapf(errInvalidNumber, token.Pos, "invalid number %q", text)
	}

	switch suffix {
	case 'L':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return invalid()
		}
		lit.Kind, lit.Value = LiteralInt64, v
	case 'M':
		v, err := decimal.NewFromString(body)
		if err != nil {
			return invalid()
		}
		lit.Kind, lit.Value = LiteralDecimal, v
	case 'D':
		v, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return invalid()
		}
		lit.Kind, lit.Value = LiteralDouble, v
	case 'F':
		v, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return invalid()
		}
		lit.Kind, lit.Value = LiteralSingle, float32(v)
	default:
		if strings.ContainsAny(body, ".eE") {
			v, err := strconv.ParseFloat(body, 64)
			if err != nil {
				return invalid()
			}
			lit.Kind, lit.Value = LiteralDouble, v
			break
		}
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return invalid()
		}
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			lit.Kind, lit.Value = LiteralInt32, int32(v)
		} else {
			lit.Kind, lit.Value = LiteralInt64, v
		}
	}
	return lit, nil
}
