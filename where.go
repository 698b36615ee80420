package repogen

// Record is a raw object as exchanged with a Delegate, keyed by schema field name.
type Record = map[string]any

// Where is a filter document keyed by schema field name.
type Where map[string]any

// Merge returns a copy of w with every entry of join applied on top.
// Keys present in join always win, so callers cannot override join columns.
func (w Where) Merge(join Where) Where {
	out := make(Where, len(w)+len(join))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range join {
		out[k] = v
	}
	return out
}

// Some matches objects whose list relation contains at least one element
// matching the inner filter.
type Some Where

// Connect links a newly created object to existing objects matching the
// inner filter through a list relation.
type Connect Where

// Order is a single ordering term.
type Order struct {
	Field string
	Desc  bool
}

// Asc returns an ascending ordering term.
func Asc(field string) Order { return Order{Field: field} }

// Desc returns a descending ordering term.
func Desc(field string) Order { return Order{Field: field, Desc: true} }
