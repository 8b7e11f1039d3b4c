package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dzikrimr/tugasmk/model"
)

func newTestMapper(policy PartyPolicy) *Mapper {
	m := NewMapper(policy)
	m.now = func() time.Time {
		return time.Date(2019, time.November, 19, 10, 0, 0, 0, time.UTC)
	}
	return m
}

func TestMapEntitiesScenario(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	entities := model.EntitySet{
		model.CategoryOrg:   {"Universitas Kadiri"},
		model.CategoryPer:   {"Dr. Eko Winarti", "Fajar Setiawan"},
		model.CategoryLoc:   {"Jl. Selomangleng No. 1 Kediri"},
		model.CategoryMoney: {"Rp 3.500.000"},
		model.CategoryDate:  {"19 November 2019", "20 November 2019"},
		model.CategoryTime:  {"2 hari"},
	}

	fields := m.MapEntities(entities)

	if fields["pihak1_name"] != "Dr. Eko Winarti" {
		t.Errorf("Expected pihak1_name 'Dr. Eko Winarti', got '%s'", fields["pihak1_name"])
	}
	if fields["pihak2_name"] != "Fajar Setiawan" {
		t.Errorf("Expected pihak2_name 'Fajar Setiawan', got '%s'", fields["pihak2_name"])
	}
	if fields["pihak1_company"] != "Universitas Kadiri" {
		t.Errorf("Expected pihak1_company 'Universitas Kadiri', got '%s'", fields["pihak1_company"])
	}
	if fields["pihak1_address"] != "Jl. Selomangleng No. 1 Kediri" {
		t.Errorf("Expected address from LOC, got '%s'", fields["pihak1_address"])
	}
	if fields["contract_value"] != "Rp 3.500.000" {
		t.Errorf("Expected contract_value 'Rp 3.500.000', got '%s'", fields["contract_value"])
	}
	if !strings.Contains(fields["contract_value_words"], "Juta") {
		t.Errorf("Expected contract_value_words to contain 'Juta', got '%s'", fields["contract_value_words"])
	}
	if fields["start_date"] != "19 November 2019" {
		t.Errorf("Expected start_date '19 November 2019', got '%s'", fields["start_date"])
	}
	if fields["end_date"] != "20 November 2019" {
		t.Errorf("Expected end_date '20 November 2019', got '%s'", fields["end_date"])
	}
}

func TestMapEntitiesTotality(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	inputs := []model.EntitySet{
		{},
		nil,
		{model.CategoryOrg: {"x"}},
		{model.CategoryMoney: {"Rp ,,,", ""}},
		{model.CategoryPer: {"##win", "ab"}},
	}

	for _, entities := range inputs {
		fields := m.MapEntities(entities)
		for _, key := range model.FieldNames {
			value, ok := fields[key]
			if !ok {
				t.Errorf("Missing schema key %s for input %v", key, entities)
			}
			if value == "" {
				t.Errorf("Empty value for schema key %s", key)
			}
		}
	}
}

func TestMapEntitiesEmptyEqualsDefaults(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{})
	defaults := m.Defaults()

	if !reflect.DeepEqual(fields, defaults) {
		t.Errorf("Empty entity set should map to defaults exactly.\ngot:  %v\nwant: %v", fields, defaults)
	}
}

func TestMapOrganizationsPolicy(t *testing.T) {
	orgs := []string{"universitas kadiri", "cv maju jaya"}

	m1 := newTestMapper(UniversityAsParty1)
	fields := m1.MapEntities(model.EntitySet{model.CategoryOrg: orgs})
	if fields["pihak1_company"] != "Universitas Kadiri" {
		t.Errorf("party1 policy: expected university as pihak1_company, got '%s'", fields["pihak1_company"])
	}
	if fields["pihak2_company"] != "Cv Maju Jaya" {
		t.Errorf("party1 policy: expected other org as pihak2_company, got '%s'", fields["pihak2_company"])
	}

	m2 := newTestMapper(UniversityAsParty2)
	fields = m2.MapEntities(model.EntitySet{model.CategoryOrg: orgs})
	if fields["pihak2_company"] != "Universitas Kadiri" {
		t.Errorf("party2 policy: expected university as pihak2_company, got '%s'", fields["pihak2_company"])
	}
	if fields["pihak1_company"] != "Cv Maju Jaya" {
		t.Errorf("party2 policy: expected other org as pihak1_company, got '%s'", fields["pihak1_company"])
	}
}

func TestMapOrganizationsLengthFilter(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	// Short fragments must not be treated as organizations.
	fields := m.MapEntities(model.EntitySet{model.CategoryOrg: {"PT", "CV", "Uni"}})
	if fields["pihak1_company"] != m.Defaults()["pihak1_company"] {
		t.Errorf("Expected default company for short ORG strings, got '%s'", fields["pihak1_company"])
	}
}

func TestMapPersonsFiltersTokenFragments(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{
		model.CategoryPer: {"##nar", "eko", "budi santoso", "budi santoso", "sri rahayu"},
	})

	if fields["pihak1_name"] != "Budi Santoso" {
		t.Errorf("Expected pihak1_name 'Budi Santoso', got '%s'", fields["pihak1_name"])
	}
	if fields["pihak2_name"] != "Sri Rahayu" {
		t.Errorf("Expected pihak2_name 'Sri Rahayu', got '%s'", fields["pihak2_name"])
	}
}

func TestMapPersonsSingleCandidate(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{model.CategoryPer: {"budi santoso"}})

	if fields["pihak1_name"] != "Budi Santoso" {
		t.Errorf("Expected pihak1_name 'Budi Santoso', got '%s'", fields["pihak1_name"])
	}
	if fields["pihak2_name"] != m.Defaults()["pihak2_name"] {
		t.Errorf("Expected default pihak2_name, got '%s'", fields["pihak2_name"])
	}
}

func TestMapLocationsPicksLongest(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{
		model.CategoryLoc: {"Kediri", "Jl. Selomangleng", "Jl. Selomangleng No. 1 Kediri Jawa Timur"},
	})

	want := "Jl. Selomangleng No. 1 Kediri Jawa Timur"
	if fields["pihak1_address"] != want {
		t.Errorf("Expected longest location, got '%s'", fields["pihak1_address"])
	}
	if fields["pihak2_address"] != want {
		t.Errorf("Expected same location for both parties, got '%s'", fields["pihak2_address"])
	}
	if fields["contract_location"] != want {
		t.Errorf("Expected contract_location set, got '%s'", fields["contract_location"])
	}
}

func TestMapMoneyKeepsMaximum(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{
		model.CategoryMoney: {"Rp 500.000", "Rp 3.500.000", "Rp 1.000.000", "Rp ..."},
	})

	if fields["contract_value"] != "Rp 3.500.000" {
		t.Errorf("Expected maximum amount kept, got '%s'", fields["contract_value"])
	}
	if fields["contract_value_words"] != "Tiga Juta Lima Ratus Ribu Rupiah" {
		t.Errorf("Unexpected contract_value_words: '%s'", fields["contract_value_words"])
	}
}

func TestMapMoneyDiscardsDigitless(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{model.CategoryMoney: {"Rp ...", "Rp ,-"}})

	// Digitless strings are discarded, not parsed as zero.
	if fields["contract_value"] != m.Defaults()["contract_value"] {
		t.Errorf("Expected default contract_value, got '%s'", fields["contract_value"])
	}
}

func TestMapDatesCalendarOrder(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	// Lexicographic order would pick "12 Desember 2019" as earliest; the
	// calendar order must win when all dates parse.
	fields := m.MapEntities(model.EntitySet{
		model.CategoryDate: {"12 Desember 2019", "5 Januari 2019"},
	})

	if fields["start_date"] != "5 Januari 2019" {
		t.Errorf("Expected calendar-earliest start_date, got '%s'", fields["start_date"])
	}
	if fields["end_date"] != "12 Desember 2019" {
		t.Errorf("Expected calendar-latest end_date, got '%s'", fields["end_date"])
	}
	if fields["contract_date"] != "5 Januari 2019" {
		t.Errorf("Expected contract_date = earliest, got '%s'", fields["contract_date"])
	}
}

func TestMapDatesLexicographicFallback(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{
		model.CategoryDate: {"2019-11-20", "2019-11-19"},
	})

	if fields["start_date"] != "2019-11-19" {
		t.Errorf("Expected string-sorted start_date, got '%s'", fields["start_date"])
	}
	if fields["end_date"] != "2019-11-20" {
		t.Errorf("Expected string-sorted end_date, got '%s'", fields["end_date"])
	}
}

func TestMapDatesSingleValue(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	fields := m.MapEntities(model.EntitySet{
		model.CategoryDate: {"19 November 2019", "19 November 2019"},
	})

	if fields["start_date"] != "19 November 2019" || fields["end_date"] != "19 November 2019" {
		t.Errorf("Expected single date for both ends, got start='%s' end='%s'",
			fields["start_date"], fields["end_date"])
	}
}

func TestDefaultsComputedDates(t *testing.T) {
	m := newTestMapper(UniversityAsParty1)

	defaults := m.Defaults()

	if defaults["contract_date"] != "19 November 2019" {
		t.Errorf("Expected contract_date '19 November 2019', got '%s'", defaults["contract_date"])
	}
	if defaults["start_date"] != "19 November 2019" {
		t.Errorf("Expected start_date today, got '%s'", defaults["start_date"])
	}
	// 90 days after 19 November 2019
	if defaults["end_date"] != "17 Februari 2020" {
		t.Errorf("Expected end_date '17 Februari 2020', got '%s'", defaults["end_date"])
	}
}

func TestParseDateID(t *testing.T) {
	got, err := parseDateID("19 november 2019")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Day() != 19 || got.Month() != time.November || got.Year() != 2019 {
		t.Errorf("Unexpected parsed date: %v", got)
	}

	for _, bad := range []string{"19/11/2019", "November 2019", "19 Movember 2019", "x November 2019"} {
		if _, err := parseDateID(bad); err == nil {
			t.Errorf("Expected parse error for %q", bad)
		}
	}
}

func TestParsePartyPolicy(t *testing.T) {
	if p, err := ParsePartyPolicy("university_as_party1"); err != nil || p != UniversityAsParty1 {
		t.Errorf("Unexpected result: %v, %v", p, err)
	}
	if p, err := ParsePartyPolicy("university_as_party2"); err != nil || p != UniversityAsParty2 {
		t.Errorf("Unexpected result: %v, %v", p, err)
	}
	if _, err := ParsePartyPolicy("both"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
