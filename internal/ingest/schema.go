package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMissingField = errors.New("required field missing")

// SchemaVersion is part of every cache key. Bump it when a schema changes
// what a Record contains.
const SchemaVersion = "1"

// Kind identifies the layout of a source file.
type Kind string

const (
	KindRent        Kind = "rent"
	KindPopulation  Kind = "population"
	KindStores      Kind = "stores"
	KindRevenue     Kind = "revenue"
	KindStartupCost Kind = "startup_cost"
)

// Field is a canonical column of a Record.
type Field string

const (
	FieldLocation     Field = "location"
	FieldRent         Field = "rent"
	FieldPopulation   Field = "population"
	FieldIndustry     Field = "industry"
	FieldStores       Field = "stores"
	FieldOpenings     Field = "openings"
	FieldClosures     Field = "closures"
	FieldClosureRate  Field = "closure_rate"
	FieldSales        Field = "sales"
	FieldWeekendSales Field = "weekend_sales"
	FieldTransactions Field = "transactions"
	FieldQuarter      Field = "quarter"
	FieldCost         Field = "cost"
)

// Record is a row projected onto a schema's fields. Fields whose column is
// absent from the file are absent from the record.
type Record map[Field]string

// FieldSpec describes how to find the column for one field. Aliases are
// compared case-insensitively in order. When Latest is set the pattern is
// tried first and the matching column with the most recent period label
// wins.
type FieldSpec struct {
	Field    Field
	Aliases  []string
	Pattern  *regexp.Regexp
	Latest   bool
	Required bool
}

type Schema struct {
	Kind   Kind
	Fields []FieldSpec
}

var (
	quarterColumnPattern = regexp.MustCompile(`\d{4}\s*(년\s*[1-4]\s*분기|[Qq]\s*[1-4])`)
	periodPattern        = regexp.MustCompile(`(\d{4})\s*(?:년)?\s*[Qq]?\s*([1-4])`)
)

var locationAliases = []string{"행정동_코드_명", "행정동명", "행정동", "상권명", "상권", "지역", "행정구역", "dong", "area"}

var schemas = map[Kind]Schema{
	KindRent: {
		Kind: KindRent,
		Fields: []FieldSpec{
			{Field: FieldLocation, Aliases: locationAliases, Required: true},
			{Field: FieldRent, Aliases: []string{"전체", "임대료", "rent"}, Pattern: quarterColumnPattern, Latest: true, Required: true},
		},
	},
	KindPopulation: {
		Kind: KindPopulation,
		Fields: []FieldSpec{
			{Field: FieldLocation, Aliases: locationAliases, Required: true},
			{Field: FieldPopulation, Aliases: []string{"총_유동인구_수", "유동인구", "유동인구수", "population"}, Required: true},
			{Field: FieldQuarter, Aliases: []string{"기준_년분기_코드", "기준년분기", "quarter"}},
		},
	},
	KindStores: {
		Kind: KindStores,
		Fields: []FieldSpec{
			{Field: FieldLocation, Aliases: locationAliases, Required: true},
			{Field: FieldIndustry, Aliases: []string{"서비스_업종_코드_명", "업종", "industry"}, Required: true},
			{Field: FieldStores, Aliases: []string{"점포_수", "점포수", "stores"}},
			{Field: FieldOpenings, Aliases: []string{"개업_점포_수", "개업", "openings"}},
			{Field: FieldClosures, Aliases: []string{"폐업_점포_수", "폐업", "closures"}},
			{Field: FieldClosureRate, Aliases: []string{"폐업_률", "폐업률", "closure_rate"}},
			{Field: FieldQuarter, Aliases: []string{"기준_년분기_코드", "기준년분기", "quarter"}},
		},
	},
	KindRevenue: {
		Kind: KindRevenue,
		Fields: []FieldSpec{
			{Field: FieldLocation, Aliases: locationAliases, Required: true},
			{Field: FieldIndustry, Aliases: []string{"서비스_업종_코드_명", "업종", "industry"}, Required: true},
			{Field: FieldSales, Aliases: []string{"당월_매출_금액", "매출", "매출액", "sales"}, Required: true},
			{Field: FieldWeekendSales, Aliases: []string{"주말_매출_금액", "주말매출", "weekend_sales"}},
			{Field: FieldTransactions, Aliases: []string{"당월_매출_건수", "분기당_매출_건수", "매출건수", "transactions"}},
			{Field: FieldQuarter, Aliases: []string{"기준_년분기_코드", "기준년분기", "quarter"}},
		},
	},
	KindStartupCost: {
		Kind: KindStartupCost,
		Fields: []FieldSpec{
			{Field: FieldIndustry, Aliases: []string{"업종", "서비스_업종_코드_명", "industry"}, Required: true},
			{Field: FieldCost, Aliases: []string{"합계금액", "합계", "창업비용", "cost"}, Required: true},
		},
	},
}

// SchemaFor returns the built-in schema of a source kind.
func SchemaFor(kind Kind) (Schema, bool) {
	s, ok := schemas[kind]
	return s, ok
}

// Binding maps each field of a schema to the column it was found in.
type Binding struct {
	Kind    Kind
	Columns map[Field]string
}

// Bind locates every field's column among headers. A missing required field
// fails the whole binding.
func (s Schema) Bind(headers []string) (Binding, error) {
	b := Binding{Kind: s.Kind, Columns: make(map[Field]string, len(s.Fields))}
	var missing []string
	for _, f := range s.Fields {
		col, ok := f.match(headers)
		if ok {
			b.Columns[f.Field] = col
			continue
		}
		if f.Required {
			missing = append(missing, string(f.Field))
		}
	}
	if len(missing) > 0 {
		return b, fmt.Errorf("%w for %s source: %s", ErrMissingField, s.Kind, strings.Join(missing, ", "))
	}
	return b, nil
}

func (f FieldSpec) match(headers []string) (string, bool) {
	if f.Latest && f.Pattern != nil {
		if col, ok := latestColumn(f.Pattern, headers); ok {
			return col, true
		}
	}
	for _, alias := range f.Aliases {
		for _, h := range headers {
			if strings.EqualFold(h, alias) {
				return h, true
			}
		}
	}
	if !f.Latest && f.Pattern != nil {
		for _, h := range headers {
			if f.Pattern.MatchString(h) {
				return h, true
			}
		}
	}
	return "", false
}

func latestColumn(pattern *regexp.Regexp, headers []string) (string, bool) {
	best, bestRank := "", -1
	for _, h := range headers {
		if !pattern.MatchString(h) {
			continue
		}
		if r := PeriodRank(h); r > bestRank {
			best, bestRank = h, r
		}
	}
	return best, bestRank >= 0
}

// PeriodRank orders period labels such as "2024년 2분기", "2024Q2" or the
// quarter code "20242". Labels without a period rank 0.
func PeriodRank(label string) int {
	m := periodPattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	quarter, _ := strconv.Atoi(m[2])
	return year*10 + quarter
}

// Record projects a raw row onto the bound fields.
func (b Binding) Record(row RawRow) Record {
	rec := make(Record, len(b.Columns))
	for field, col := range b.Columns {
		rec[field] = row[col]
	}
	return rec
}

// Project binds the table's headers to schema and projects every row.
func Project(t *Table, schema Schema) ([]Record, error) {
	b, err := schema.Bind(t.Headers)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = b.Record(row)
	}
	return records, nil
}
