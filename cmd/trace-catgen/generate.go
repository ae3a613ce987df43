package main

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// acronyms keep their upper case in Go names.
var acronyms = map[string]bool{
	"TLS": true,
	"CMP": true,
	"BN":  true,
}

// categoryGoName converts "TLS_CIPHER" to "CategoryTLSCipher" and
// "PKCS12_KEYGEN" to "CategoryPKCS12Keygen".
func categoryGoName(name string) string {
	var b strings.Builder
	b.WriteString("Category")
	for _, part := range strings.Split(strings.ToUpper(name), "_") {
		if part == "" {
			continue
		}
		if acronyms[part] || strings.IndexFunc(part, unicode.IsDigit) >= 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(part[:1])
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

type categoryData struct {
	Name   string
	GoName string
	Doc    string
}

type tableData struct {
	Source     string
	Categories []categoryData
}

var categoryTmpl = template.Must(template.New("categories").Parse(`// Code generated by trace-catgen from {{.Source}}. DO NOT EDIT.

package trace

const (
{{- range $i, $c := .Categories}}
// {{$c.GoName}} traces {{$c.Doc}}.
{{$c.GoName}}{{if eq $i 0}} Category = iota{{end}}
{{- end}}

// NumCategories is the number of registered categories.
NumCategories
)

var categoryTable = [...]categoryEntry{
{{- range .Categories}}
{{printf "{%q, %s}," .Name .GoName}}
{{- end}}
}
`))

// GenerateCategories renders the Go source for the category table.
func GenerateCategories(table *RawCategoryTable, source string) (string, error) {
	data := tableData{Source: source}
	for _, c := range table.Categories {
		data.Categories = append(data.Categories, categoryData{
			Name:   strings.ToUpper(c.Name),
			GoName: categoryGoName(c.Name),
			Doc:    strings.TrimSuffix(strings.TrimSpace(c.Doc), "."),
		})
	}

	var b strings.Builder
	if err := categoryTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering categories: %w", err)
	}
	return b.String(), nil
}
