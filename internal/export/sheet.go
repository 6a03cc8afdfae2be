package export

// Column is a named field of a Sheet. Key indexes Row, Title is the header text.
type Column struct {
	Key   string
	Title string
}

// Row maps column keys to display text. Missing keys render as blank cells.
type Row map[string]string

// Sheet is a tabular projection ready to be serialized.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Values returns the row cells in column order.
func (s *Sheet) Values(r Row) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = r[c.Key]
	}

	return out
}
