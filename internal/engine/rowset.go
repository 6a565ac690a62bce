package engine

// RowSet is a fully decoded query result. Rows are positional; Columns
// carries the output names in result order. Grading compares by position,
// so a learner's column aliases never matter.
type RowSet struct {
	Columns []string
	Rows    [][]Value
}

// Row is the name-keyed view of a single result row, used where callers
// want lookups by output column instead of position.
type Row map[string]Value

// RowMap returns row i keyed by column name
func (rs *RowSet) RowMap(i int) Row {
	row := make(Row, len(rs.Columns))
	for c, name := range rs.Columns {
		row[name] = rs.Rows[i][c]
	}
	return row
}
