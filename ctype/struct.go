package ctype

// Field is a struct member with its parsed type.
type Field struct {
	Name        string
	Type        Type
	Description string
}

// Struct is a canonical struct definition. For alias entries Alias names the
// base struct and Fields is the base's field list.
type Struct struct {
	Name        string
	Description string
	Alias       string
	Fields      []Field
}

// IsAlias reports whether s was produced from an alias entry.
func (s *Struct) IsAlias() bool {
	return s.Alias != ""
}

// Field returns the named field.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
