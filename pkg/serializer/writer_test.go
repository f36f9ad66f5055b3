// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type testRecord struct {
	Name     string        `json:"name" yaml:"name"`
	Value    int           `json:"value" yaml:"value"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

type testTable []testRecord

func (t testTable) TableHeader() []string { return []string{"NAME", "VALUE"} }

func (t testTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Name, strings.Repeat("*", r.Value)})
	}
	return rows
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatJSON, &buf)

	data := []testRecord{{Name: "vscode", Value: 1}, {Name: "cursor", Value: 2}}
	if err := writer.Serialize(context.Background(), data); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var result []testRecord
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(result) != 2 || result[1].Name != "cursor" {
		t.Errorf("Unexpected data: %+v", result)
	}
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatYAML, &buf)

	if err := writer.Serialize(context.Background(), testRecord{Name: "vscode", Value: 3}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var result testRecord
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal YAML: %v", err)
	}
	if result.Name != "vscode" || result.Value != 3 {
		t.Errorf("Unexpected data: %+v", result)
	}
}

func TestWriter_SerializeTable(t *testing.T) {
	t.Run("flattened", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{
			"result": testRecord{Name: "vscode", Value: 7, Duration: 1500 * time.Millisecond},
		}
		if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), data); err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"FIELD", "result.name", "vscode", "result.value", "7", "result.duration", "1.5s"} {
			if !strings.Contains(out, want) {
				t.Errorf("table output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("tabular", func(t *testing.T) {
		var buf bytes.Buffer
		data := testTable{{Name: "python", Value: 2}, {Name: "go", Value: 1}}
		if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), data); err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[0], "NAME") || !strings.HasPrefix(lines[1], "python") {
			t.Errorf("unexpected table:\n%s", buf.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), testTable{}); err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "<empty>" {
			t.Errorf("expected <empty>, got %q", buf.String())
		}
	})
}

func TestWriter_UnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(Format("xml"), &buf).Serialize(context.Background(), testRecord{Name: "x"}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestNewFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	w := NewFileWriterOrStdout(FormatYAML, path)
	if err := w.Serialize(context.Background(), testRecord{Name: "file"}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "name: file") {
		t.Errorf("unexpected file content: %q", data)
	}

	if NewFileWriterOrStdout(FormatJSON, "  ").output != os.Stdout {
		t.Error("empty path should write to stdout")
	}
}

func TestFormats(t *testing.T) {
	for _, f := range SupportedFormats() {
		if Format(f).IsUnknown() {
			t.Errorf("supported format %q reported unknown", f)
		}
	}
	if !Format("csv").IsUnknown() {
		t.Error("csv should be unknown")
	}
}
