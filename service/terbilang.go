package service

import (
	"strconv"
	"strings"
)

// WordsFallback is returned when no amount can be read from the input.
const WordsFallback = "Akan ditentukan kemudian"

var terbilangOnes = []string{
	"", "Satu", "Dua", "Tiga", "Empat", "Lima", "Enam", "Tujuh", "Delapan", "Sembilan",
}

// ToWords converts a raw money string into Indonesian words with a "Rupiah"
// suffix. It never fails: inputs without any digit yield WordsFallback, and
// amounts of a trillion Rupiah or more are rendered as grouped digits instead
// of words.
func ToWords(raw string) string {
	digits := stripNonDigits(raw)
	if digits == "" {
		return WordsFallback
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "Nol Rupiah"
	}

	// Anything at or beyond 10^12 is out of the word tables' range.
	if len(digits) > 12 {
		return groupDigits(digits) + " Rupiah"
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return groupDigits(digits) + " Rupiah"
	}

	return terbilang(amount) + " Rupiah"
}

// terbilang renders 1..999_999_999_999 in words, without the currency suffix.
func terbilang(n int64) string {
	switch {
	case n < 10:
		return terbilangOnes[n]
	case n == 10:
		return "Sepuluh"
	case n == 11:
		return "Sebelas"
	case n < 20:
		return join(terbilangOnes[n-10], "Belas")
	case n < 100:
		return join(terbilangOnes[n/10]+" Puluh", terbilang(n%10))
	case n < 200:
		return join("Seratus", terbilang(n%100))
	case n < 1_000:
		return join(terbilangOnes[n/100]+" Ratus", terbilang(n%100))
	case n < 2_000:
		return join("Seribu", terbilang(n%1_000))
	case n < 1_000_000:
		return join(terbilang(n/1_000)+" Ribu", terbilang(n%1_000))
	case n < 1_000_000_000:
		return join(terbilang(n/1_000_000)+" Juta", terbilang(n%1_000_000))
	default:
		return join(terbilang(n/1_000_000_000)+" Milyar", terbilang(n%1_000_000_000))
	}
}

func join(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + " " + tail
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// groupDigits inserts thousands separators the Indonesian way: 1.000.000.
func groupDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}
