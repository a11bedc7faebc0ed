package schema

import (
	"math"
	"strconv"
	"strings"
)

// Num coerces backend values to a float64. Strings may carry thousand
// separators and surrounding whitespace; anything non-numeric reports
// false.
func Num(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Stringify renders a value the way the upstream payloads expect:
// floats without exponent notation or trailing zeros, everything else
// via the obvious conversion.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	}
	return ""
}

// grouped inserts thousand separators into the integer part.
func grouped(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	out := intPart
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Money formats an amount already denominated in 만원 (ten thousand
// won). Missing or unparsable values become the placeholder.
func Money(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return grouped(n) + "만원"
}

func Percent(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return grouped(n) + "%"
}

// AreaSqm renders square meters to at most two decimals.
func AreaSqm(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return trimFixed2(n) + "㎡"
}

func Pyeong(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return trimFixed2(n) + "평"
}

// Fixed2 keeps exactly two decimals, as transaction tables do.
func Fixed2(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

// Grouped renders a bare thousand-separated number.
func Grouped(v any) string {
	n, ok := Num(v)
	if !ok {
		return "-"
	}
	return grouped(n)
}

func trimFixed2(n float64) string {
	s := strconv.FormatFloat(n, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ElevatorText maps the various truthy and falsy elevator markers to
// the Korean display strings.
func ElevatorText(v any) string {
	switch s := v.(type) {
	case bool:
		if s {
			return "있음 (O)"
		}
		return "없음 (X)"
	case string:
		switch s {
		case "Y", "O":
			return "있음 (O)"
		case "N", "X":
			return "없음 (X)"
		}
	}
	return "-"
}

// YesNo collapses the marker alphabet soup to Y or N. Unknown but
// non-empty values pass through unchanged so nothing is hidden.
func YesNo(v any) string {
	raw := Stringify(v)
	switch strings.ToUpper(raw) {
	case "Y", "O", "TRUE", "1":
		return "Y"
	case "N", "X", "FALSE", "0":
		return "N"
	}
	return raw
}

// SafeValue stringifies a value with a placeholder for anything
// missing, empty or non-finite.
func SafeValue(v any) string {
	if v == nil {
		return "-"
	}
	if f, isF := v.(float64); isF && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return "-"
	}
	s := Stringify(v)
	if s == "" {
		return "-"
	}
	return s
}
