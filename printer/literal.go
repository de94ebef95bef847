package printer

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// constantText returns the literal text a constant was parsed from, or
// formats its value when the constant was built programmatically.
func constantText(n *semantic.ConstantNode) string {
	if text := n.LiteralText(); text != "" {
		return text
	}
	return formatValue(n.Value(), n.TypeReference())
}

func formatValue(value interface{}, typeRef edm.TypeReference) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 && edm.IsPrimitiveKind(typeRef, edm.PrimitiveInt64) {
			return strconv.FormatInt(v, 10) + "L"
		}
		return strconv.FormatInt(v, 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case float32:
		if special, ok := specialFloat(float64(v)); ok {
			return special
		}
		return formatFloat(float64(v), 32) + "F"
	case float64:
		return formatFloat(v, 64)
	case decimal.Decimal:
		return v.String() + "M"
	case uuid.UUID:
		return v.String()
	case time.Time:
		if edm.IsPrimitiveKind(typeRef, edm.PrimitiveDate) {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339Nano)
	case time.Duration:
		return "duration'" + formatDuration(v) + "'"
	case []byte:
		return "binary'" + base64.URLEncoding.EncodeToString(v) + "'"
	}
	return fmt.Sprint(value)
}

// formatFloat keeps a fractional part so the value reads back as a
// floating point literal.
func formatFloat(v float64, bits int) string {
	if special, ok := specialFloat(v); ok {
		return special
	}
	text := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text
}

// specialFloat spells infinities and NaN the way OData literals do.
func specialFloat(v float64) (string, bool) {
	switch {
	case math.IsInf(v, 1):
		return "INF", true
	case math.IsInf(v, -1):
		return "-INF", true
	case math.IsNaN(v):
		return "NaN", true
	}
	return "", false
}

// formatDuration writes d as an ISO 8601 duration using days, hours,
// minutes and seconds.
func formatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	if days := d / (24 * time.Hour); days > 0 {
		fmt.Fprintf(&b, "%dD", days)
		d -= days * 24 * time.Hour
	}
	if d == 0 {
		if b.Len() <= 2 {
			b.WriteString("T0S")
		}
		return b.String()
	}
	b.WriteByte('T')
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= m * time.Minute
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}
