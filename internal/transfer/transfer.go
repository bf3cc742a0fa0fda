// Package transfer reads and writes entry documents for import and export.
package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"notifier/internal/service"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema.json"

// maxDocumentBytes bounds the size of an import document.
const maxDocumentBytes = 16 << 20

// Document is the export shape, matching the store's list response.
type Document struct {
	Entries []service.Entry `json:"entries"`
}

// Problem is one violation found in an import document.
type Problem struct {
	// Path locates the offending value, e.g. entries[2].value.title.
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// InvalidError reports every problem of a rejected document.
type InvalidError struct {
	Problems []Problem
}

func (e *InvalidError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid document: " + strings.Join(parts, "; ")
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Export writes entries as an indented document.
func Export(w io.Writer, entries []service.Entry) error {
	if entries == nil {
		entries = []service.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Entries: entries}); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Decode reads a document, validates it and returns its entries.
// A document that fails validation yields an *InvalidError.
func Decode(r io.Reader) ([]service.Entry, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, &InvalidError{Problems: []Problem{{Message: "not valid JSON: " + err.Error()}}}
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		var problems []Problem
		collectProblems(&problems, ve)
		return nil, &InvalidError{Problems: problems}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	// Calendar validity is beyond the schema pattern.
	var problems []Problem
	for i, e := range doc.Entries {
		if !service.ValidDueDate(e.Value.DueDate) {
			problems = append(problems, Problem{
				Path:    fmt.Sprintf("entries[%d].value.dueDate", i),
				Message: fmt.Sprintf("%q is not a calendar date", e.Value.DueDate),
			})
		}
	}
	if len(problems) > 0 {
		return nil, &InvalidError{Problems: problems}
	}
	return doc.Entries, nil
}

func collectProblems(problems *[]Problem, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*problems = append(*problems, Problem{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(problems, cause)
	}
}

// pointerToPath turns a JSON pointer into dotted form with [i] indexes.
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
