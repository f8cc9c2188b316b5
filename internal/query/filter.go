// Package query turns untrusted list parameters into store-neutral filters.
//
// A Filter only ever names fields from fixed allow-lists and carries user
// input as literal values or as an escaped, case-insensitive pattern. Store
// drivers translate it to their own query language as bound parameters.
package query

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxSearchLen is the maximum number of characters of a search term kept.
const MaxSearchLen = 80

// Asset fields that search matches against.
var AssetSearchFields = []string{"id", "brand", "model", "assignedUserName", "serialNumber"}

// Collaborator fields that search matches against.
var CollaboratorSearchFields = []string{"fullName", "email", "employeeId"}

// Eq is an exact-match constraint on a named field.
type Eq struct {
	Field string
	Value string
}

// Search is a literal, case-insensitive "contains" match OR-ed across Fields.
type Search struct {
	// Term is the normalized user input.
	Term string
	// Pattern is Term with every regular-expression metacharacter escaped.
	Pattern string
	Fields  []string
}

// Regexp compiles the case-insensitive pattern. It cannot fail for
// patterns built by NewSearch.
func (s Search) Regexp() *regexp.Regexp {
	return regexp.MustCompile("(?i)" + s.Pattern)
}

// Filter is the store-neutral query. The zero Filter matches everything.
type Filter struct {
	Equals []Eq
	Search *Search
}

// IsEmpty reports whether the filter matches all records.
func (f Filter) IsEmpty() bool {
	return len(f.Equals) == 0 && f.Search == nil
}

// Matcher compiles the filter once and returns a predicate for evaluating
// many records in memory; get returns a record's value for a field.
func (f Filter) Matcher() func(get func(field string) string) bool {
	var re *regexp.Regexp
	if f.Search != nil {
		re = f.Search.Regexp()
	}
	return func(get func(field string) string) bool {
		for _, eq := range f.Equals {
			if get(eq.Field) != eq.Value {
				return false
			}
		}
		if re == nil {
			return true
		}
		for _, field := range f.Search.Fields {
			if re.MatchString(get(field)) {
				return true
			}
		}
		return false
	}
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(get func(field string) string) bool {
	return f.Matcher()(get)
}

// NormalizeTerm trims a search term and truncates it to MaxSearchLen characters.
func NormalizeTerm(term string) string {
	term = strings.TrimSpace(term)
	if r := []rune(term); len(r) > MaxSearchLen {
		term = string(r[:MaxSearchLen])
	}
	return term
}

// NewSearch builds a literal search across fields. It returns nil when the
// normalized term is empty.
func NewSearch(term string, fields []string) *Search {
	term = NormalizeTerm(term)
	if term == "" {
		return nil
	}
	return &Search{
		Term:    term,
		Pattern: regexp.QuoteMeta(term),
		Fields:  append([]string(nil), fields...),
	}
}

// AssetParams are the optional asset list parameters.
type AssetParams struct {
	Status        string
	Location      string
	Area          string
	EquipmentType string
	Search        string
}

// AssetParamsFromValues reads asset list parameters from a query string.
func AssetParamsFromValues(v url.Values) AssetParams {
	return AssetParams{
		Status:        v.Get("status"),
		Location:      v.Get("location"),
		Area:          v.Get("area"),
		EquipmentType: v.Get("equipmentType"),
		Search:        v.Get("search"),
	}
}

// Build returns the filter for the asset parameters.
func (p AssetParams) Build() Filter {
	var f Filter
	f.Equals = appendEq(f.Equals, "status", p.Status)
	f.Equals = appendEq(f.Equals, "location", p.Location)
	f.Equals = appendEq(f.Equals, "area", p.Area)
	f.Equals = appendEq(f.Equals, "equipmentType", p.EquipmentType)
	f.Search = NewSearch(p.Search, AssetSearchFields)
	return f
}

// CollaboratorParams are the optional collaborator list parameters.
type CollaboratorParams struct {
	Area     string
	Status   string
	WorkMode string
	Search   string
}

// CollaboratorParamsFromValues reads collaborator list parameters from a query string.
func CollaboratorParamsFromValues(v url.Values) CollaboratorParams {
	return CollaboratorParams{
		Area:     v.Get("area"),
		Status:   v.Get("status"),
		WorkMode: v.Get("workMode"),
		Search:   v.Get("search"),
	}
}

// Build returns the filter for the collaborator parameters.
func (p CollaboratorParams) Build() Filter {
	var f Filter
	f.Equals = appendEq(f.Equals, "area", p.Area)
	f.Equals = appendEq(f.Equals, "status", p.Status)
	f.Equals = appendEq(f.Equals, "workMode", p.WorkMode)
	f.Search = NewSearch(p.Search, CollaboratorSearchFields)
	return f
}

func appendEq(eqs []Eq, field, value string) []Eq {
	value = strings.TrimSpace(value)
	if value == "" {
		return eqs
	}
	return append(eqs, Eq{Field: field, Value: value})
}
