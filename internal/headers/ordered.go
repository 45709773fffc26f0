package headers

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical title-cases each dash-separated word of name, so
// "content-length" becomes "Content-Length". Letters already upper case are
// left alone.
func Canonical(name string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English, cases.NoLower).String(name)
}

type field struct {
	name  string
	value string
}

// Ordered is a response header list that keeps insertion order for
// serialization. Names are compared case-insensitively.
type Ordered struct {
	fields []field
}

func NewOrdered() *Ordered {
	return &Ordered{}
}

// Set replaces the value of an existing field in place, or appends a new one
// under its canonical name.
func (o *Ordered) Set(name, value string) {
	if i := o.index(name); i >= 0 {
		o.fields[i].value = value
		return
	}
	o.fields = append(o.fields, field{name: Canonical(name), value: value})
}

func (o *Ordered) Get(name string) string {
	if i := o.index(name); i >= 0 {
		return o.fields[i].value
	}
	return ""
}

func (o *Ordered) Has(name string) bool {
	return o.index(name) >= 0
}

func (o *Ordered) Del(name string) {
	if i := o.index(name); i >= 0 {
		o.fields = append(o.fields[:i], o.fields[i+1:]...)
	}
}

func (o *Ordered) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

// All yields name/value pairs in insertion order.
func (o *Ordered) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if o == nil {
			return
		}
		for _, f := range o.fields {
			if !yield(f.name, f.value) {
				return
			}
		}
	}
}

func (o *Ordered) index(name string) int {
	if o == nil {
		return -1
	}
	for i, f := range o.fields {
		if strings.EqualFold(f.name, name) {
			return i
		}
	}
	return -1
}
