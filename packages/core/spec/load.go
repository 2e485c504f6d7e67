package spec

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is a loaded request file: the plain nested document for template
// resolution, plus the order-sensitive sections in authoring order (Go maps
// discard YAML mapping order). Define entries resolve top to bottom, so an
// entry may reference the ones above it.
type File struct {
	Path     string
	Doc      map[string]any
	Defines  Pairs
	Captures Pairs
	Asserts  Pairs
}

// LoadRequestFile reads a request file, validating its shape first.
func LoadRequestFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("empty request file: %s", path)
	}

	if err := ValidateRequestDoc(doc); err != nil {
		return nil, fmt.Errorf("invalid request file %s: %w", path, err)
	}

	var ordered struct {
		Defines  Pairs `yaml:"Define"`
		Captures Pairs `yaml:"Captures"`
		Asserts  Pairs `yaml:"Asserts"`
	}
	if err := yaml.Unmarshal(data, &ordered); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &File{
		Path:     path,
		Doc:      doc,
		Defines:  ordered.Defines,
		Captures: ordered.Captures,
		Asserts:  ordered.Asserts,
	}, nil
}

// DecodeRequest turns a (resolved) request document into a typed spec.
func DecodeRequest(doc map[string]any) (*RequestSpec, error) {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encoding request document: %w", err)
	}

	var req RequestSpec
	if err := yaml.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("decoding request document: %w", err)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("missing required field: Method")
	}
	if req.Endpoint == "" {
		return nil, fmt.Errorf("missing required field: Endpoint")
	}
	return &req, nil
}

// LoadSuite reads and validates a suite file. Relative request and data
// source paths are resolved against the suite file's directory.
func LoadSuite(path string) (*SuiteSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := ValidateSuiteDoc(doc); err != nil {
		return nil, fmt.Errorf("invalid suite file %s: %w", path, err)
	}

	var suite SuiteSpec
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if suite.Name == "" {
		base := filepath.Base(path)
		suite.Name = base[:len(base)-len(filepath.Ext(base))]
	}

	dir := filepath.Dir(path)
	for i, req := range suite.Requests {
		if !filepath.IsAbs(req) {
			suite.Requests[i] = filepath.Join(dir, req)
		}
	}
	for i, src := range suite.DataSources {
		if !filepath.IsAbs(src) {
			suite.DataSources[i] = filepath.Join(dir, src)
		}
	}
	return &suite, nil
}

// LoadRows reads a CSV data source: first record is the header, every
// following record becomes one row mapping.
func LoadRows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data source: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading data source %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
