package notify

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// formatMoney renders an amount rounded to whole dollars with thousands
// separators, e.g. 1234567.5 -> "$1,234,568".
func formatMoney(v float64) string {
	return "$" + formatThousands(v)
}

func formatThousands(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

// humanizeLabel turns "income_replacement" into "Income Replacement".
func humanizeLabel(label string) string {
	words := strings.Split(strings.ReplaceAll(label, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

type breakdownLine struct {
	Label  string
	Amount float64
}

// orderedBreakdown reads results.breakdown keeping the calculator's key order.
// Missing or malformed data yields nil.
func orderedBreakdown(raw json.RawMessage) []breakdownLine {
	if len(raw) == 0 {
		return nil
	}
	var envelope struct {
		Breakdown json.RawMessage `json:"breakdown"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Breakdown) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Breakdown))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var lines []breakdownLine
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)
		var amount float64
		if err := dec.Decode(&amount); err != nil {
			return nil
		}
		lines = append(lines, breakdownLine{Label: key, Amount: amount})
	}
	return lines
}
