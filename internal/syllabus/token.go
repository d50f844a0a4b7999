package syllabus

import (
	"strconv"
	"strings"
)

// Suffix is the legal repetition marker that Spanish legislation appends to an
// article number when articles are inserted between existing ones.
type Suffix string

const (
	SuffixNone      Suffix = ""
	SuffixBis       Suffix = "bis"
	SuffixTer       Suffix = "ter"
	SuffixQuater    Suffix = "quater"
	SuffixQuinquies Suffix = "quinquies"
	SuffixSexies    Suffix = "sexies"
	SuffixSepties   Suffix = "septies"
)

var knownSuffixes = []Suffix{
	SuffixSepties, SuffixSexies, SuffixQuinquies, SuffixQuater, SuffixTer, SuffixBis,
}

// Token is the normalized form of an article-number string. Root is 0 when the
// number is non-numeric (e.g. "único", "preliminar"); Raw then carries the
// cleaned text and is compared verbatim.
type Token struct {
	Root   int
	Suffix Suffix
	Raw    string
}

// Canonical returns the comparison key for the token: "47", "47 bis", or the
// cleaned raw text for non-numeric markers. Two article numbers refer to the
// same article iff their canonical forms are equal.
func (t Token) Canonical() string {
	if t.Root == 0 {
		if t.Suffix != SuffixNone {
			return t.Raw + " " + string(t.Suffix)
		}
		return t.Raw
	}
	s := strconv.Itoa(t.Root)
	if t.Suffix != SuffixNone {
		s += " " + string(t.Suffix)
	}
	return s
}

// IsNumeric reports whether the token carries a numeric root.
func (t Token) IsNumeric() bool { return t.Root > 0 }

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// ParseArticleNumber normalizes one article-number string into a Token. It is
// the single entry point for article-number matching; every comparison in the
// engine goes through the canonical form it produces, so "47 bis", "47bis" and
// "cuarenta y siete bis" all collide onto the same key.
func ParseArticleNumber(raw string) Token {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.ToLower(s), "artículo ")
	s = strings.TrimPrefix(s, "articulo ")
	s = strings.TrimPrefix(s, "art. ")
	s = strings.TrimPrefix(s, "art ")
	s = accentFolder.Replace(strings.ToLower(s))
	s = strings.Trim(s, ".,;:()º° ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Token{}
	}

	s, suffix := splitSuffix(s)

	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return Token{Root: n, Suffix: suffix, Raw: s}
	}
	if n, ok := parseRoman(s); ok {
		return Token{Root: n, Suffix: suffix, Raw: s}
	}
	if n, ok := parseSpanishOrdinal(s); ok {
		return Token{Root: n, Suffix: suffix, Raw: s}
	}
	if n, ok := parseSpanishCardinal(s); ok {
		return Token{Root: n, Suffix: suffix, Raw: s}
	}
	return Token{Suffix: suffix, Raw: s}
}

// splitSuffix detaches a repetition marker whether it arrives space-separated
// ("47 bis") or glued to the root ("47bis"). Longest markers are tried first
// so "sexies" is never misread as a glued "s" tail.
func splitSuffix(s string) (string, Suffix) {
	for _, suf := range knownSuffixes {
		tail := string(suf)
		if s == tail {
			// bare "bis" with no root: keep it as raw text
			return s, SuffixNone
		}
		if strings.HasSuffix(s, " "+tail) {
			return strings.TrimSpace(strings.TrimSuffix(s, " "+tail)), suf
		}
		if strings.HasSuffix(s, tail) {
			head := strings.TrimSuffix(s, tail)
			head = strings.Trim(head, ". ")
			if head != "" {
				return head, suf
			}
		}
	}
	return s, SuffixNone
}

var romanDigits = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100}

func parseRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := romanDigits[s[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	if total <= 0 || total > 299 {
		return 0, false
	}
	return total, true
}

var ordinalWords = map[string]int{
	"primero": 1, "primera": 1, "primer": 1, "unico": 1, // "artículo único"
	"segundo": 2, "segunda": 2,
	"tercero": 3, "tercera": 3, "tercer": 3,
	"cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5,
	"sexto": 6, "sexta": 6,
	"septimo": 7, "septima": 7,
	"octavo": 8, "octava": 8,
	"noveno": 9, "novena": 9,
	"decimo": 10, "decima": 10,
	"undecimo": 11, "duodecimo": 12,
	"decimotercero": 13, "decimocuarto": 14, "decimoquinto": 15,
	"decimosexto": 16, "decimoseptimo": 17, "decimoctavo": 18,
	"decimonoveno": 19, "vigesimo": 20,
}

func parseSpanishOrdinal(s string) (int, bool) {
	n, ok := ordinalWords[s]
	return n, ok
}

var cardinalUnits = map[string]int{
	"uno": 1, "un": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9,
	"diez": 10, "once": 11, "doce": 12, "trece": 13, "catorce": 14,
	"quince": 15, "dieciseis": 16, "diecisiete": 17, "dieciocho": 18,
	"diecinueve": 19, "veinte": 20,
	"veintiuno": 21, "veintiun": 21, "veintidos": 22, "veintitres": 23,
	"veinticuatro": 24, "veinticinco": 25, "veintiseis": 26,
	"veintisiete": 27, "veintiocho": 28, "veintinueve": 29,
}

var cardinalTens = map[string]int{
	"treinta": 30, "cuarenta": 40, "cincuenta": 50, "sesenta": 60,
	"setenta": 70, "ochenta": 80, "noventa": 90,
}

// parseSpanishCardinal understands written cardinals up to "doscientos
// noventa y nueve", the range observed in scope tables.
func parseSpanishCardinal(s string) (int, bool) {
	base := 0
	switch {
	case s == "cien" || s == "ciento":
		return 100, true
	case s == "doscientos" || s == "doscientas":
		return 200, true
	case strings.HasPrefix(s, "ciento "):
		base, s = 100, strings.TrimPrefix(s, "ciento ")
	case strings.HasPrefix(s, "doscientos "):
		base, s = 200, strings.TrimPrefix(s, "doscientos ")
	case strings.HasPrefix(s, "doscientas "):
		base, s = 200, strings.TrimPrefix(s, "doscientas ")
	}
	if n, ok := cardinalUnits[s]; ok {
		return base + n, true
	}
	if n, ok := cardinalTens[s]; ok {
		return base + n, true
	}
	if tens, rest, found := strings.Cut(s, " y "); found {
		t, okT := cardinalTens[tens]
		u, okU := cardinalUnits[rest]
		if okT && okU && u < 10 {
			return base + t + u, true
		}
	}
	return 0, false
}
