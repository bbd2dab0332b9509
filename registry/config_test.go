/*
Copyright 2020 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"sigs.k8s.io/derived-metrics/ast"
)

func TestLoadConfigStream(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantCount int
		wantNames []string
	}{
		{
			name: "plain lines",
			text: "a = 1 + 1\nb = 2 + 2\n",
			wantCount: 2,
			wantNames: []string{"a", "b"},
		},
		{
			name: "comments and blanks are skipped",
			text: "# header\n\na = 1\n#a trailing comment\n",
			wantCount: 1,
			wantNames: []string{"a"},
		},
		{
			name: "comment marker only counts in column one",
			text: " # = not.a.comment\n",
			wantCount: 0,
		},
		{
			name: "only the first equals splits",
			text: "cmp = a == b\n",
			wantCount: 1,
			wantNames: []string{"cmp"},
		},
		{
			name: "trailing name and leading expression whitespace is trimmed",
			text: "padded.name\t = \t 1 + 1  \n",
			wantCount: 1,
			wantNames: []string{"padded.name"},
		},
		{
			name: "missing equals skips the line only",
			text: "no equals here\nok = 1\n",
			wantCount: 1,
			wantNames: []string{"ok"},
		},
		{
			name: "bad name skips the line only",
			text: "1bad = 1\nok = 1\n",
			wantCount: 1,
			wantNames: []string{"ok"},
		},
		{
			name: "parse failure skips the line only",
			text: "broken = a + + b\nok = 1\n",
			wantCount: 1,
			wantNames: []string{"ok"},
		},
		{
			name: "crlf line endings",
			text: "a = 1\r\nb = 2\r\n",
			wantCount: 2,
			wantNames: []string{"a", "b"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(nil)
			n, err := r.LoadConfigStream(tc.text)
			if err != nil {
				t.Fatalf("LoadConfigStream: %v", err)
			}
			if n != tc.wantCount {
				t.Errorf("count = %d, want %d", n, tc.wantCount)
			}
			for _, name := range tc.wantNames {
				if _, err := r.LookupID(name); err != nil {
					t.Errorf("%q not registered", name)
				}
			}
		})
	}
}

func TestLoadConfigStreamLeadingWhitespaceName(t *testing.T) {
	// A line whose first byte is whitespace is not a comment even if '#'
	// follows; it goes down the normal path and fails name validation.
	r := New(nil)
	n, _ := r.LoadConfigStream(" #x = 1\n")
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPathSpec(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "one.conf", "a = 1\nb = 2\n")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "two.conf", "c = 3\n")

	other := t.TempDir()
	f2 := writeFile(t, other, "three.conf", "d = 4\n")

	r := New(nil)
	n, err := r.LoadPathSpec(dir+":"+f2, false)
	if err != nil {
		t.Fatalf("LoadPathSpec: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
	for _, name := range []string{"a", "b", "c", "d"} {
		if _, err := r.LookupID(name); err != nil {
			t.Errorf("%q not registered", name)
		}
	}
	_ = f1
}

func TestLoadPathSpecMissing(t *testing.T) {
	r := New(nil)
	if _, err := r.LoadPathSpec("/no/such/path", false); err == nil {
		t.Errorf("strict mode should propagate a missing path")
	}
	if _, err := r.LoadPathSpec("/no/such/path", true); err != nil {
		t.Errorf("tolerant mode should suppress a missing path: %v", err)
	}
}

func TestLoadYAMLManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metrics.yaml", `
metrics:
  - name: disk.util
    expr: "1 + 1"
  - name: mem.util
    expr: "2 + 2"
`)
	r := New(nil)
	n, err := r.LoadPathSpec(dir, false)
	if err != nil {
		t.Fatalf("LoadPathSpec: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if _, err := r.LookupID("disk.util"); err != nil {
		t.Errorf("disk.util not registered")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "derived.conf", "env.metric = 1\n")

	t.Run("explicit path spec", func(t *testing.T) {
		t.Setenv("DERIVED_CONFIG", dir)
		r := New(nil)
		n, err := r.LoadFromEnvironment()
		if err != nil || n != 1 {
			t.Errorf("LoadFromEnvironment = %d, %v; want 1, nil", n, err)
		}
	})

	t.Run("empty means load nothing", func(t *testing.T) {
		t.Setenv("DERIVED_CONFIG", "")
		r := New(nil)
		n, err := r.LoadFromEnvironment()
		if err != nil || n != 0 {
			t.Errorf("LoadFromEnvironment = %d, %v; want 0, nil", n, err)
		}
	})
}

func TestRegisterAnonymous(t *testing.T) {
	r := New(nil)
	id, err := r.RegisterAnonymous("events.anon", "U64")
	if err != nil {
		t.Fatalf("RegisterAnonymous: %v", err)
	}
	if !id.IsDerived() {
		t.Errorf("anonymous id should be derived")
	}
	c := r.OpenContext(testDictionary())
	defer r.CloseContext(c)
	d, err := r.Descriptor(c, id)
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.ValueType != ast.U64 {
		t.Errorf("anon descriptor value type = %v, want U64", d.ValueType)
	}
	if d.ID != id {
		t.Errorf("anon descriptor id = %v, want %v", d.ID, id)
	}
}
