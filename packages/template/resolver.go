package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/imhmg/purl/packages/fake"
	"github.com/imhmg/purl/packages/vars"
)

// MaxDepth bounds variable-references-variable chains. A chain longer than
// this is treated as a cycle.
const MaxDepth = 10

var (
	placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	wholePattern       = regexp.MustCompile(`^\$\{([^}]+)\}$`)
)

// Resolver substitutes ${...} placeholders through the variable store and
// the fake-data generator. It walks arbitrary nested structures of strings,
// maps, and sequences, returning a structurally identical result.
type Resolver struct {
	store *vars.Store
	fake  *fake.Generator
}

func NewResolver(store *vars.Store, gen *fake.Generator) *Resolver {
	if gen == nil {
		gen = fake.New()
	}
	return &Resolver{store: store, fake: gen}
}

// Store exposes the backing variable store.
func (r *Resolver) Store() *vars.Store {
	return r.store
}

// Resolve substitutes every placeholder in value. A string that consists of
// exactly one placeholder keeps the resolved value's original type; a
// placeholder embedded in a larger string substitutes textually.
func (r *Resolver) Resolve(value any) (any, error) {
	return r.resolveAny(value, "", nil)
}

// ResolveAt is Resolve with a field path prefix used in error messages.
func (r *Resolver) ResolveAt(value any, path string) (any, error) {
	return r.resolveAny(value, path, nil)
}

// ResolveString resolves a single string and returns the textual form.
func (r *Resolver) ResolveString(s string) (string, error) {
	v, err := r.resolveText(s, "", nil)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}

// ResolveStringAt is ResolveString with a field path for error messages.
func (r *Resolver) ResolveStringAt(s, path string) (string, error) {
	v, err := r.resolveText(s, path, nil)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}

func (r *Resolver) resolveAny(value any, path string, chain []string) (any, error) {
	switch v := value.(type) {
	case string:
		return r.resolveText(v, path, chain)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := r.resolveAny(item, joinPath(path, k), chain)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := r.resolveAny(item, fmt.Sprintf("%s[%d]", path, i), chain)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func (r *Resolver) resolveText(s, path string, chain []string) (any, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	// A whole-value placeholder keeps the resolved value's type. This is
	// what lets numeric and boolean config fields survive substitution.
	if m := wholePattern.FindStringSubmatch(s); m != nil {
		return r.expand(m[1], path, chain)
	}

	var out strings.Builder
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(s, -1) {
		out.WriteString(s[last:loc[0]])
		inner := s[loc[2]:loc[3]]
		v, err := r.expand(inner, path, chain)
		if err != nil {
			return nil, err
		}
		out.WriteString(stringify(v))
		last = loc[1]
	}
	out.WriteString(s[last:])
	return out.String(), nil
}

// expand resolves the content of one ${...} span: either a generator call or
// a variable name, recursing while the resolved value itself contains
// placeholders.
func (r *Resolver) expand(inner, path string, chain []string) (any, error) {
	inner = strings.TrimSpace(inner)

	if rest, ok := strings.CutPrefix(inner, "fake."); ok {
		out, err := r.fake.Call(rest)
		if err != nil {
			return nil, &UnresolvedError{
				Placeholder: "${" + inner + "}",
				Path:        path,
				Reason:      err.Error(),
			}
		}
		return out, nil
	}

	for _, seen := range chain {
		if seen == inner {
			return nil, &CyclicError{Chain: append(append([]string{}, chain...), inner)}
		}
	}
	if len(chain) >= MaxDepth {
		return nil, &CyclicError{Chain: append(append([]string{}, chain...), inner)}
	}

	v, ok := r.store.Resolve(inner)
	if !ok {
		return nil, &UnresolvedError{Placeholder: "${" + inner + "}", Path: path}
	}

	if v.Kind() == vars.KindString {
		if s := v.Raw().(string); strings.Contains(s, "${") {
			return r.resolveText(s, path, append(chain, inner))
		}
	}
	return v.Raw(), nil
}

func stringify(v any) string {
	return vars.From(v).String()
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
