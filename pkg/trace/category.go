package trace

import (
	"strconv"
	"strings"
)

//go:generate go run ../../cmd/trace-catgen -input categories.yaml -output category_gen.go

// Category identifies a trace topic. Valid categories are in the range
// [0, NumCategories).
type Category int

// CategoryInvalid is returned by lookups that find no category.
const CategoryInvalid Category = -1

// Valid reports whether c is inside the registered range.
func (c Category) Valid() bool {
	return c >= 0 && c < NumCategories
}

// String returns the registered name of the category.
func (c Category) String() string {
	if name, ok := CategoryName(c); ok {
		return name
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

// CategoryName returns the registered name for c.
func CategoryName(c Category) (string, bool) {
	for _, e := range categoryTable {
		if e.category == c {
			return e.name, true
		}
	}
	return "", false
}

// CategoryByName returns the category registered under name, compared
// case-insensitively. It returns CategoryInvalid if there is none.
func CategoryByName(name string) Category {
	for _, e := range categoryTable {
		if strings.EqualFold(name, e.name) {
			return e.category
		}
	}
	return CategoryInvalid
}

// Categories returns all registered categories in id order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryTable))
	for _, e := range categoryTable {
		out = append(out, e.category)
	}
	return out
}

type categoryEntry struct {
	name     string
	category Category
}
