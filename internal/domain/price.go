package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPrice подставляется, когда витрина не передала цену.
const DefaultPrice = "$0.00"

// numericPrefix: ведущее десятичное число, хвост строки игнорируется.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)`)

// ParsePrice разбирает отображаемую цену вида "$12.50".
// Ведущий символ валюты и разделители тысяч отбрасываются, берётся ведущее
// число ("$12.50 each" даёт 12.5). Строка без числа даёт 0.
func ParsePrice(display string) float64 {
	s := strings.TrimSpace(display)
	if r, size := utf8.DecodeRuneInString(s); size > 0 && unicode.Is(unicode.Sc, r) {
		s = strings.TrimSpace(s[size:])
	}
	s = numericPrefix.FindString(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// RoundCents округляет сумму до двух знаков после запятой.
func RoundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// FormatPrice форматирует сумму в долларах с двумя знаками.
func FormatPrice(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}
