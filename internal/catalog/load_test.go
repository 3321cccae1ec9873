// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cat, err := Default("components")
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	wantFiles := []string{
		"response_handler.py",
		"logger.py",
		"data_processor.py",
		"intent_classifier.py",
		"chatbot_main.py",
	}
	list := cat.List()
	if len(list) != len(wantFiles) {
		t.Fatalf("default catalog has %d components, want %d", len(list), len(wantFiles))
	}
	for i, comp := range list {
		if int(comp.ID) != i+1 {
			t.Errorf("components[%d].ID = %d, want %d", i, comp.ID, i+1)
		}
		if comp.File != wantFiles[i] {
			t.Errorf("components[%d].File = %q, want %q", i, comp.File, wantFiles[i])
		}
		if comp.Description == "" {
			t.Errorf("components[%d] has no description", i)
		}
	}
}

func TestDefault_Builtin(t *testing.T) {
	t.Parallel()

	cat, err := Default("")
	if err != nil {
		t.Fatalf("Default(\"\") error = %v", err)
	}
	if cat.Dir() != BuiltinLocation {
		t.Errorf("Dir() = %q, want %q", cat.Dir(), BuiltinLocation)
	}

	for _, comp := range cat.List() {
		f, err := cat.Open(comp)
		if err != nil {
			t.Errorf("component %d: Open(%q) error = %v", comp.ID, comp.File, err)
			continue
		}
		got, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			t.Fatalf("component %d: read: %v", comp.ID, err)
		}
		if len(got) == 0 {
			t.Errorf("component %d: embedded %s is empty", comp.ID, comp.File)
		}

		want, err := os.ReadFile(filepath.Join("components", filepath.FromSlash(comp.File)))
		if err != nil {
			t.Fatalf("component %d: %v", comp.ID, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("component %d: embedded bytes differ from components/%s", comp.ID, comp.File)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"catalog.cue":  FormatCUE,
		"catalog.yaml": FormatYAML,
		"catalog.YML":  FormatYAML,
		"catalog.toml": FormatTOML,
		"catalog.json": FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}

	if _, err := FormatFromPath("catalog.xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatFromPath(.xml) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParse_AllFormats(t *testing.T) {
	t.Parallel()

	docs := map[Format]string{
		FormatCUE: `
components: [
	{id: 1, name: "Greeting", description: "Says hello", file: "greeting.js"},
	{id: 2, name: "FAQ", file: "faq.js"},
]
`,
		FormatYAML: `
components:
  - id: 1
    name: Greeting
    description: Says hello
    file: greeting.js
  - id: 2
    name: FAQ
    file: faq.js
`,
		FormatTOML: `
[[components]]
id = 1
name = "Greeting"
description = "Says hello"
file = "greeting.js"

[[components]]
id = 2
name = "FAQ"
file = "faq.js"
`,
		FormatJSON: `{"components":[
	{"id":1,"name":"Greeting","description":"Says hello","file":"greeting.js"},
	{"id":2,"name":"FAQ","file":"faq.js"}
]}`,
	}

	for format, doc := range docs {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			cat, err := Parse([]byte(doc), format, "catalog."+string(format), "dir")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			list := cat.List()
			if len(list) != 2 {
				t.Fatalf("got %d components, want 2", len(list))
			}
			if list[0].ID != 1 || list[0].Name != "Greeting" || list[0].Description != "Says hello" || list[0].File != "greeting.js" {
				t.Errorf("components[0] = %+v", list[0])
			}
			if list[1].ID != 2 || list[1].Description != "" {
				t.Errorf("components[1] = %+v", list[1])
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		doc    string
		want   string
	}{
		{"cue schema violation", FormatCUE, `components: [{id: 0, name: "x", file: "x.js"}]`, "components[0].id"},
		{"cue unknown field", FormatCUE, `components: [{id: 1, name: "x", file: "x.js", extra: true}]`, "extra"},
		{"yaml unknown field", FormatYAML, "components:\n  - id: 1\n    name: x\n    file: x.js\n    bogus: 1\n", "bogus"},
		{"toml unknown field", FormatTOML, "[[components]]\nid = 1\nname = \"x\"\nfile = \"x.js\"\nbogus = 1\n", "strict mode"},
		{"json duplicate id", FormatJSON, `{"components":[{"id":1,"name":"a","file":"a.js"},{"id":1,"name":"b","file":"b.js"}]}`, "duplicate id"},
		{"bad format", Format("xml"), `<x/>`, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc), tt.format, "catalog", "dir")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "catalog.yaml")
	doc := "components:\n  - id: 3\n    name: Weather\n    file: weather.js\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("dir defaults to catalog directory", func(t *testing.T) {
		t.Parallel()

		cat, err := LoadFile(path, "")
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cat.Dir() != tmp {
			t.Errorf("Dir() = %q, want %q", cat.Dir(), tmp)
		}
	})

	t.Run("explicit dir", func(t *testing.T) {
		t.Parallel()

		cat, err := LoadFile(path, "/opt/components")
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		comp, ok := cat.Lookup(3)
		if !ok {
			t.Fatal("component 3 missing")
		}
		if got, want := cat.SourcePath(comp), filepath.Join("/opt/components", "weather.js"); got != want {
			t.Errorf("SourcePath() = %q, want %q", got, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadFile(filepath.Join(tmp, "nope.cue"), ""); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
