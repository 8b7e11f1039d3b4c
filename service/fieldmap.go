package service

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dzikrimr/tugasmk/model"
)

// PartyPolicy names the template-dependent choice of which contract party a
// university-like organization belongs to. Templates written from the
// university's point of view put it as party 1; vendor-issued templates put
// it as party 2.
type PartyPolicy int

const (
	UniversityAsParty1 PartyPolicy = iota
	UniversityAsParty2
)

// ParsePartyPolicy parses the config representation of a party policy.
func ParsePartyPolicy(s string) (PartyPolicy, error) {
	switch s {
	case "university_as_party1":
		return UniversityAsParty1, nil
	case "university_as_party2":
		return UniversityAsParty2, nil
	default:
		return UniversityAsParty1, fmt.Errorf("unknown party policy: %q", s)
	}
}

// Mapper derives the fixed contract field schema from an aggregated entity
// set. It is a pure function of its input and the clock; safe for concurrent
// use.
type Mapper struct {
	policy PartyPolicy
	now    func() time.Time
}

// NewMapper creates a Mapper with the given party policy.
func NewMapper(policy PartyPolicy) *Mapper {
	return &Mapper{policy: policy, now: time.Now}
}

// MapEntities turns a noisy entity set into a complete field mapping. Every
// key in model.FieldNames is present in the result: entity-derived values
// first, built-in defaults for the rest. Defaults never override a derived
// value.
func (m *Mapper) MapEntities(entities model.EntitySet) model.FieldMapping {
	fields := make(model.FieldMapping, len(model.FieldNames))

	m.mapOrganizations(entities[model.CategoryOrg], fields)
	m.mapPersons(entities[model.CategoryPer], fields)
	m.mapLocations(entities[model.CategoryLoc], fields)
	m.mapMoney(entities[model.CategoryMoney], fields)
	m.mapDates(entities[model.CategoryDate], fields)

	// Duration entities are recognized but have no field in the schema.
	if durations := entities[model.CategoryTime]; len(durations) > 0 {
		slog.Debug("duration entities not mapped", "count", len(durations))
	}

	for key, value := range m.Defaults() {
		if _, ok := fields[key]; !ok {
			fields[key] = value
		}
	}

	return fields
}

// mapOrganizations buckets ORG candidates into university-like and other,
// then assigns one per party according to the policy.
func (m *Mapper) mapOrganizations(orgs []string, fields model.FieldMapping) {
	var university, other string
	for _, org := range orgs {
		if len(org) <= 4 {
			continue
		}
		if strings.Contains(strings.ToLower(org), "universitas") {
			if university == "" {
				university = titleID(org)
			}
		} else if other == "" {
			other = titleID(org)
		}
	}

	universityField, otherField := "pihak1_company", "pihak2_company"
	if m.policy == UniversityAsParty2 {
		universityField, otherField = otherField, universityField
	}
	if university != "" {
		fields[universityField] = university
	}
	if other != "" {
		fields[otherField] = other
	}
}

// mapPersons assigns the first two valid person names to the parties. The
// "##" prefix marks sub-word fragments leaked by the recognizer's tokenizer.
func (m *Mapper) mapPersons(persons []string, fields model.FieldMapping) {
	for _, per := range persons {
		if strings.HasPrefix(per, "##") || len(per) <= 3 {
			continue
		}
		name := titleID(per)
		if _, ok := fields["pihak1_name"]; !ok {
			fields["pihak1_name"] = name
			continue
		}
		if name == fields["pihak1_name"] {
			continue
		}
		if _, ok := fields["pihak2_name"]; !ok {
			fields["pihak2_name"] = name
			break
		}
	}
}

// mapLocations picks the longest sufficiently-long location as the canonical
// address for both parties. OCR tends to split addresses; the longest string
// is the most complete one.
func (m *Mapper) mapLocations(locations []string, fields model.FieldMapping) {
	var best string
	for _, loc := range locations {
		if len(loc) <= 10 {
			continue
		}
		if len(loc) > len(best) {
			best = loc
		}
	}
	if best == "" {
		return
	}
	fields["pihak1_address"] = best
	fields["pihak2_address"] = best
	fields["contract_location"] = best
}

// mapMoney keeps the largest parseable amount as the authoritative contract
// value. Strings without digits are discarded rather than treated as zero.
func (m *Mapper) mapMoney(amounts []string, fields model.FieldMapping) {
	var bestRaw, bestDigits string
	for _, raw := range amounts {
		digits := stripNonDigits(raw)
		if digits == "" {
			continue
		}
		digits = strings.TrimLeft(digits, "0")
		if bestRaw == "" || moreDigits(digits, bestDigits) {
			bestRaw, bestDigits = raw, digits
		}
	}
	if bestRaw == "" {
		return
	}
	fields["contract_value"] = bestRaw
	fields["contract_value_words"] = ToWords(bestRaw)
}

// moreDigits compares two non-negative integers in decimal string form.
func moreDigits(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

// mapDates orders the recognized dates and assigns the extremes. When every
// string parses as an Indonesian long date the order is calendar-aware;
// otherwise it degrades to a lexicographic sort, which is only correct for a
// single shared date format.
func (m *Mapper) mapDates(dates []string, fields model.FieldMapping) {
	distinct := dedupe(dates)
	if len(distinct) == 0 {
		return
	}

	sorted := sortDates(distinct)
	earliest := sorted[0]
	latest := sorted[len(sorted)-1]

	fields["contract_date"] = earliest
	fields["start_date"] = earliest
	fields["end_date"] = latest
}

func sortDates(dates []string) []string {
	type dated struct {
		raw string
		at  time.Time
	}

	parsed := make([]dated, len(dates))
	for i, d := range dates {
		t, err := parseDateID(d)
		if err != nil {
			// Degraded mode: a plain string sort, only correct when all
			// dates share one format.
			sorted := make([]string, len(dates))
			copy(sorted, dates)
			sort.Strings(sorted)
			return sorted
		}
		parsed[i] = dated{raw: d, at: t}
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].at.Before(parsed[j].at)
	})

	sorted := make([]string, len(parsed))
	for i, d := range parsed {
		sorted[i] = d.raw
	}
	return sorted
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Defaults returns the built-in value for every schema field. Date-typed
// defaults are computed from the current date; everything else is a fixed
// Indonesian placeholder the office fills in by hand.
func (m *Mapper) Defaults() model.FieldMapping {
	now := m.now()
	return model.FieldMapping{
		"contract_number":      fmt.Sprintf("001/SPK/%d", now.Year()),
		"contract_date":        formatDateID(now),
		"contract_location":    "Kediri",
		"pihak1_name":          "Nama Pihak Pertama",
		"pihak1_company":       "Instansi Pihak Pertama",
		"pihak1_position":      "Direktur",
		"pihak1_address":       "Alamat Pihak Pertama",
		"pihak1_npwp":          "00.000.000.0-000.000",
		"pihak1_bank_account":  "Rekening Pihak Pertama",
		"pihak2_name":          "Nama Pihak Kedua",
		"pihak2_company":       "Instansi Pihak Kedua",
		"pihak2_position":      "Direktur",
		"pihak2_address":       "Alamat Pihak Kedua",
		"pihak2_npwp":          "00.000.000.0-000.000",
		"pihak2_bank_account":  "Rekening Pihak Kedua",
		"contract_value":       "Rp 0",
		"contract_value_words": "Nol Rupiah",
		"start_date":           formatDateID(now),
		"end_date":             formatDateID(now.AddDate(0, 0, 90)),
		"scope_of_work":        "Pengadaan barang dan jasa sesuai kesepakatan kedua belah pihak",
		"terms":                "Syarat dan ketentuan mengikuti peraturan yang berlaku",
		"payment_terms":        "Pembayaran dilakukan setelah pekerjaan dinyatakan selesai",
		"penalty_percentage":   "1",
		"force_majeure_days":   "14",
	}
}

var monthsID = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// parseDateID parses an Indonesian long date such as "19 November 2019".
func parseDateID(s string) (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("not a long date: %q", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}
	month := 0
	for i, name := range monthsID {
		if strings.EqualFold(parts[1], name) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, fmt.Errorf("unknown month in %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1000 {
		return time.Time{}, fmt.Errorf("invalid year in %q", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// formatDateID renders t as an Indonesian long date.
func formatDateID(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}

// titleID title-cases a string using Indonesian casing rules. A fresh caser
// is created per call; cases.Caser is not safe for concurrent reuse.
func titleID(s string) string {
	return cases.Title(language.Indonesian).String(strings.TrimSpace(s))
}
