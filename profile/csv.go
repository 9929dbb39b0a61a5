package profile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{
	"ID", "Name", "Affiliation", "Interests", "Citations",
	"H-Index", "i10-Index", "Cohort", "Coauthors",
}

// listSep separates interests and coauthors inside a single CSV cell. A
// separator or backslash inside a name is written with a backslash before it.
const (
	listSep = ';'
	listEsc = '\\'
)

// numericColumns are parsed in this order, so the first malformed one is
// the one reported.
var numericColumns = []string{"citations", "h-index", "i10-index"}

// ErrMissingColumn is returned by ReadCSV when the header has no Name column.
var ErrMissingColumn = errors.New("csv: missing Name column")

// WriteCSV writes records with CSVHeader as the first row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ScholarID,
			r.Name,
			r.Affiliation,
			joinList(r.Interests),
			strconv.Itoa(r.CitedBy),
			strconv.Itoa(r.HIndex),
			strconv.Itoa(r.I10Index),
			r.Cohort,
			joinList(r.Coauthors),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records written by WriteCSV. Columns are matched by header
// name, so order does not matter and only Name is required. A Coauthors
// cell may also hold a bracketed list literal such as ['A', 'B'].
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, ErrMissingColumn
	}

	var out []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			ScholarID:   cell("id"),
			Name:        cell("name"),
			Affiliation: cell("affiliation"),
			Interests:   splitList(cell("interests")),
			Cohort:      cell("cohort"),
			Coauthors:   splitList(cell("coauthors")),
		}
		if rec.Name == "" {
			continue
		}
		dst := []*int{&rec.CitedBy, &rec.HIndex, &rec.I10Index}
		for i, name := range numericColumns {
			v, err := atoiOrZero(cell(name))
			if err != nil {
				return nil, fmt.Errorf("csv: line %d column %s: %w", line, name, err)
			}
			*dst[i] = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.ReplaceAll(s, ",", ""))
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return splitLiteral(s[1 : len(s)-1])
	}
	var (
		out []string
		cur strings.Builder
		esc bool
	)
	flush := func() {
		if part := strings.TrimSpace(cur.String()); part != "" {
			out = append(out, part)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == listEsc:
			esc = true
		case r == listSep:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// joinList is the inverse of splitList. A leading '[' is escaped too so the
// cell is never taken for a list literal.
func joinList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteRune(listSep)
		} else if strings.HasPrefix(item, "[") {
			b.WriteRune(listEsc)
		}
		for _, r := range item {
			if r == listSep || r == listEsc {
				b.WriteRune(listEsc)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitLiteral splits the body of a bracketed list of quoted strings.
func splitLiteral(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
			cur.Reset()
		case quote != 0 && r == quote:
			if name := strings.TrimSpace(cur.String()); name != "" {
				out = append(out, name)
			}
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		}
	}
	return out
}
