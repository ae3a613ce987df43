package main

import (
	"strings"
	"testing"
)

func TestParseCategoryTable(t *testing.T) {
	data := []byte(`
categories:
  - name: ANY
    doc: everything
  - name: TLS_CIPHER
    doc: cipher selection
`)
	table, err := ParseCategoryTable(data)
	if err != nil {
		t.Fatalf("ParseCategoryTable failed: %v", err)
	}
	if len(table.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(table.Categories))
	}
	if table.Categories[1].Name != "TLS_CIPHER" || table.Categories[1].Doc != "cipher selection" {
		t.Errorf("unexpected category %+v", table.Categories[1])
	}
}

func TestParseCategoryTableErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "categories: []\n", "no categories"},
		{"any not first", "categories:\n  - name: TLS\n  - name: ANY\n", "first category must be ANY"},
		{"missing name", "categories:\n  - name: ANY\n  - doc: nameless\n", "missing name"},
		{"duplicate", "categories:\n  - name: ANY\n  - name: TLS\n  - name: TLS\n", "duplicate"},
		{"lower case", "categories:\n  - name: ANY\n  - name: tls\n", "upper case"},
		{"bad char", "categories:\n  - name: ANY\n  - name: TLS-CIPHER\n", "upper case"},
		{"leading digit", "categories:\n  - name: ANY\n  - name: 3DES\n", "upper case"},
		{"double underscore", "categories:\n  - name: ANY\n  - name: TLS__X\n", "upper case"},
		{"go name clash", "categories:\n  - name: ANY\n  - name: PKCS5V2\n  - name: PKCS5_V2\n", "both map to"},
		{"bad yaml", "categories: [\n", "parsing category table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCategoryTable([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadCategoryTableMissing(t *testing.T) {
	if _, err := LoadCategoryTable("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error")
	}
}
