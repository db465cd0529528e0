package budget

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nullMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"<na>": true,
}

// IsBlank reports whether a text cell is empty or one of the null markers left by
// spreadsheet exports ("nan", "None", "NULL"...).
func IsBlank(s string) bool {
	return nullMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// CleanText trims a cell and maps null markers to "".
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if IsBlank(s) {
		return ""
	}
	return s
}

// CellString renders a driver value as text. Integral floats lose their ".0" so that
// numeric codes read from typed sources match the ones read from CSV.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case *big.Rat:
		if x == nil {
			return ""
		}
		return x.FloatString(2)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseAmount parses an amount using the accounting conventions of the GAA exports:
// thousands separators, parenthesised negatives and "-" or null markers for zero.
// ok is false when the text is not a number at all.
func ParseAmount(s string) (amount decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if IsBlank(s) || s == "-" {
		return decimal.Zero, true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, true
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// AmountValue parses an amount cell of any driver type.
func AmountValue(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case float32:
		return floatAmount(float64(x))
	case float64:
		return floatAmount(x)
	case decimal.Decimal:
		return x, true
	case *big.Rat:
		if x == nil {
			return decimal.Zero, true
		}
		return ParseAmount(x.FloatString(6))
	default:
		return ParseAmount(CellString(v))
	}
}

func floatAmount(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) {
		return decimal.Zero, true
	}
	if math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// ParseYear accepts integers, integral floats and their text forms.
func ParseYear(v any) (int, bool) {
	var year int
	switch x := v.(type) {
	case int:
		year = x
	case int32:
		year = int(x)
	case int64:
		year = int(x)
	case float32:
		return ParseYear(float64(x))
	case float64:
		if math.IsNaN(x) || x != math.Trunc(x) {
			return 0, false
		}
		year = int(x)
	default:
		s := strings.TrimSpace(CellString(v))
		if IsBlank(s) {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			year = n
			break
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		year = int(f)
	}
	if year < 1900 || year > 2999 {
		return 0, false
	}
	return year, true
}
