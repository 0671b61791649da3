package table

// Field ist ein einzelnes Name/Wert-Paar (nil = kein Wert).
type Field struct {
	Name  string
	Value *string
}

// Record ist eine Zeile: Feldname -> Wert. Die Reihenfolge der Felder bleibt
// erhalten, damit Spalten in Quellreihenfolge entstehen.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord baut einen Record aus einer Feldliste. Kommt ein Name mehrfach vor,
// gewinnt der letzte Wert, die Position bleibt die des ersten Auftretens.
func NewRecord(fields ...Field) Record {
	r := Record{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set setzt oder überschreibt ein Feld
func (r *Record) Set(name string, value *string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get liefert den Wert eines Feldes
func (r Record) Get(name string) (*string, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Fields liefert die Felder in Einfügereihenfolge
func (r Record) Fields() []Field {
	return r.fields
}

func (r Record) Len() int {
	return len(r.fields)
}

// Map liefert den Record als einfache Map
func (r Record) Map() map[string]*string {
	m := make(map[string]*string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}
