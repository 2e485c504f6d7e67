package spec

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pair is one ordered entry of a Captures or Asserts section.
type Pair struct {
	Key   string
	Value string
}

// Pairs preserves YAML mapping order, which plain Go maps discard. Capture
// and assert results are reported in authoring order.
type Pairs []Pair

func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %s", node.Tag)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		*p = append(*p, Pair{
			Key:   node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	return nil
}

func (p Pairs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pair := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Value},
		)
	}
	return node, nil
}

// StringList accepts either a single scalar or a sequence of scalars.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != "" {
			*s = StringList{node.Value}
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			*s = append(*s, item.Value)
		}
		return nil
	default:
		return fmt.Errorf("expected a string or list of strings")
	}
}

// StatusCode decodes from either an integer or a numeric string. Resolved
// placeholders can surface integer fields as strings.
type StatusCode int

func (s *StatusCode) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		*s = StatusCode(n)
		return nil
	}
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("invalid status: %s", node.Value)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("invalid status %q", text)
	}
	*s = StatusCode(n)
	return nil
}

// RequestOptions holds per-request transport settings.
type RequestOptions struct {
	Timeout  int  `yaml:"timeout"` // seconds
	Insecure bool `yaml:"insecure"`
}

// RequestSpec is one declarative HTTP request document.
type RequestSpec struct {
	Name        string            `yaml:"Name"`
	Method      string            `yaml:"Method"`
	Endpoint    string            `yaml:"Endpoint"`
	Define      map[string]string `yaml:"Define"`
	PathParams  map[string]any    `yaml:"PathParams"`
	QueryParams map[string]any    `yaml:"QueryParams"`
	Headers     map[string]string `yaml:"Headers"`

	// Body sections; at most one should be set.
	JsonBody      any               `yaml:"JsonBody"`
	FormParams    map[string]any    `yaml:"FormParams"`
	TextBody      string            `yaml:"TextBody"`
	MultipartData map[string]string `yaml:"MultipartData"`

	Status   StatusCode `yaml:"Status"`
	Captures Pairs      `yaml:"Captures"`
	Asserts  Pairs      `yaml:"Asserts"`
	PreExec  string     `yaml:"PreExec"`
	PostExec string     `yaml:"PostExec"`

	Options RequestOptions `yaml:"Options"`
}

// BodyType names which body section a spec used.
func (r *RequestSpec) BodyType() string {
	switch {
	case r.JsonBody != nil:
		return "json"
	case r.FormParams != nil:
		return "form"
	case r.TextBody != "":
		return "text"
	case r.MultipartData != nil:
		return "multipart"
	default:
		return ""
	}
}

// BodyContent renders the body section as a wire-ready string.
func (r *RequestSpec) BodyContent() (string, error) {
	switch r.BodyType() {
	case "json":
		if s, ok := r.JsonBody.(string); ok {
			return s, nil
		}
		b, err := json.Marshal(r.JsonBody)
		if err != nil {
			return "", fmt.Errorf("encoding JsonBody: %w", err)
		}
		return string(b), nil
	case "form":
		values := url.Values{}
		for k, v := range r.FormParams {
			values.Set(k, fmt.Sprintf("%v", v))
		}
		return values.Encode(), nil
	case "text":
		return r.TextBody, nil
	default:
		return "", nil
	}
}

// ResolvedEndpoint substitutes {param} path segments from PathParams.
func (r *RequestSpec) ResolvedEndpoint() string {
	endpoint := r.Endpoint
	for k, v := range r.PathParams {
		endpoint = strings.ReplaceAll(endpoint, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return endpoint
}

// SuiteOptions holds suite-wide execution settings.
type SuiteOptions struct {
	Timeout  int     `yaml:"timeout"` // seconds
	Insecure bool    `yaml:"insecure"`
	Rate     float64 `yaml:"rate"` // requests per second, 0 = unpaced
}

// SuiteSpec drives an ordered chain of request files over a data source.
type SuiteSpec struct {
	Name        string         `yaml:"Name"`
	Configs     []string       `yaml:"Configs"`
	Vars        map[string]any `yaml:"Vars"`
	DataSources StringList     `yaml:"DataSources"`
	Requests    []string       `yaml:"Requests"`
	Options     SuiteOptions   `yaml:"Options"`
	ReportPath  string         `yaml:"ReportPath"`
}
