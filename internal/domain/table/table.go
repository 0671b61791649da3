package table

// Page ist das Ergebnis eines einzelnen paginierten Aufrufs.
type Page struct {
	Records     []Record
	HasNextPage bool
	EndCursor   string
}

// Table hält das vollständige Extraktionsergebnis einer Tabelle oder eines Reports.
// Rows sind positionsgleich zu Columns.
type Table struct {
	Columns []string
	Rows    [][]*string

	index map[string]int
}

func New(columns ...string) *Table {
	t := &Table{}
	for _, c := range columns {
		t.columnIndex(c)
	}
	return t
}

// Len liefert die Anzahl der Zeilen
func (t *Table) Len() int {
	return len(t.Rows)
}

// AppendRecords hängt Records in Reihenfolge an. Unbekannte Felder werden als
// neue Spalte am Ende angelegt, bestehende Zeilen bekommen dafür nil.
func (t *Table) AppendRecords(records ...Record) {
	for _, rec := range records {
		row := make([]*string, len(t.Columns), len(t.Columns)+rec.Len())
		for _, f := range rec.Fields() {
			i := t.columnIndex(f.Name)
			for len(row) <= i {
				row = append(row, nil)
			}
			row[i] = f.Value
		}
		t.Rows = append(t.Rows, row)
	}
	t.padRows()
}

// AppendPage übernimmt die Records einer Seite
func (t *Table) AppendPage(p Page) {
	t.AppendRecords(p.Records...)
}

// AppendRow hängt eine bereits positionierte Zeile an
func (t *Table) AppendRow(values []*string) {
	row := make([]*string, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// Value liefert den Wert einer Zelle oder nil
func (t *Table) Value(row int, column string) *string {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	i, ok := t.lookup(column)
	if !ok || i >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][i]
}

// Record baut die Zeile wieder als Record auf. Bei doppelten Spaltennamen
// gewinnt die letzte Spalte.
func (t *Table) Record(row int) Record {
	var rec Record
	for i, name := range t.Columns {
		var v *string
		if i < len(t.Rows[row]) {
			v = t.Rows[row][i]
		}
		rec.Set(name, v)
	}
	return rec
}

// RenameColumns ersetzt alle Spaltennamen. Reihenfolge und Zellwerte bleiben unverändert.
func (t *Table) RenameColumns(fn func(string) string) {
	for i, name := range t.Columns {
		t.Columns[i] = fn(name)
	}
	t.index = nil
}

// MapValues wendet fn auf jeden gesetzten Zellwert an
func (t *Table) MapValues(fn func(string) string) {
	for _, row := range t.Rows {
		for i, v := range row {
			if v == nil {
				continue
			}
			mapped := fn(*v)
			row[i] = &mapped
		}
	}
}

func (t *Table) columnIndex(name string) int {
	if i, ok := t.lookup(name); ok {
		return i
	}
	t.Columns = append(t.Columns, name)
	t.index[name] = len(t.Columns) - 1
	return len(t.Columns) - 1
}

func (t *Table) lookup(name string) (int, bool) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i, c := range t.Columns {
			if _, exists := t.index[c]; !exists {
				t.index[c] = i
			}
		}
	}
	i, ok := t.index[name]
	return i, ok
}

func (t *Table) padRows() {
	for i, row := range t.Rows {
		for len(row) < len(t.Columns) {
			row = append(row, nil)
		}
		t.Rows[i] = row
	}
}
