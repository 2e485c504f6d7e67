package vars

// Layer identifies one precedence level in the store.
type Layer int

const (
	LayerOverride Layer = iota
	LayerRow
	LayerSuite
	LayerConfig
	LayerPersistent
	LayerDefine
)

func (l Layer) String() string {
	switch l {
	case LayerOverride:
		return "override"
	case LayerRow:
		return "row"
	case LayerSuite:
		return "suite"
	case LayerConfig:
		return "config"
	case LayerPersistent:
		return "persistent"
	case LayerDefine:
		return "define"
	default:
		return "unknown"
	}
}

// Store resolves variable names against an ordered set of layers. Lookups
// never mutate state; only Set writes, and always into the targeted layer.
type Store struct {
	override   map[string]Value
	row        map[string]Value
	suite      map[string]Value
	configs    []map[string]Value
	persistent map[string]Value
	define     map[string]Value
}

func NewStore() *Store {
	return &Store{
		override:   make(map[string]Value),
		row:        make(map[string]Value),
		suite:      make(map[string]Value),
		persistent: make(map[string]Value),
		define:     make(map[string]Value),
	}
}

// Resolve returns the value from the highest-precedence layer defining name.
// Config layers are consulted newest-first, so a later-declared config
// overrides an earlier one.
func (s *Store) Resolve(name string) (Value, bool) {
	if v, ok := s.override[name]; ok {
		return v, true
	}
	if v, ok := s.row[name]; ok {
		return v, true
	}
	if v, ok := s.suite[name]; ok {
		return v, true
	}
	for i := len(s.configs) - 1; i >= 0; i-- {
		if v, ok := s.configs[i][name]; ok {
			return v, true
		}
	}
	if v, ok := s.persistent[name]; ok {
		return v, true
	}
	if v, ok := s.define[name]; ok {
		return v, true
	}
	return Null(), false
}

// Set writes a value into the given layer. LayerConfig writes go into the
// newest config layer, creating one if none exists.
func (s *Store) Set(name string, v Value, layer Layer) {
	switch layer {
	case LayerOverride:
		s.override[name] = v
	case LayerRow:
		s.row[name] = v
	case LayerSuite:
		s.suite[name] = v
	case LayerConfig:
		if len(s.configs) == 0 {
			s.configs = append(s.configs, make(map[string]Value))
		}
		s.configs[len(s.configs)-1][name] = v
	case LayerPersistent:
		s.persistent[name] = v
	case LayerDefine:
		s.define[name] = v
	}
}

// SetAll writes every entry of m into the given layer.
func (s *Store) SetAll(m map[string]any, layer Layer) {
	for k, v := range m {
		s.Set(k, From(v), layer)
	}
}

// AddConfig appends a config layer. Layers added later take precedence over
// earlier ones.
func (s *Store) AddConfig(m map[string]any) {
	layer := make(map[string]Value, len(m))
	for k, v := range m {
		layer[k] = From(v)
	}
	s.configs = append(s.configs, layer)
}

// SetRow replaces the row layer with the given data-row values.
func (s *Store) SetRow(m map[string]any) {
	s.row = make(map[string]Value, len(m))
	for k, v := range m {
		s.row[k] = From(v)
	}
}

// ClearRow discards the transient row layer.
func (s *Store) ClearRow() {
	s.row = make(map[string]Value)
}

// ClearDefine discards request-local Define defaults.
func (s *Store) ClearDefine() {
	s.define = make(map[string]Value)
}

// Persistent returns a copy of the persistent layer.
func (s *Store) Persistent() map[string]Value {
	out := make(map[string]Value, len(s.persistent))
	for k, v := range s.persistent {
		out[k] = v
	}
	return out
}

// Snapshot flattens the store: each known name mapped to its
// highest-precedence value.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value)
	// Lowest precedence first so higher layers overwrite.
	for k, v := range s.define {
		out[k] = v
	}
	for k, v := range s.persistent {
		out[k] = v
	}
	for _, layer := range s.configs {
		for k, v := range layer {
			out[k] = v
		}
	}
	for k, v := range s.suite {
		out[k] = v
	}
	for k, v := range s.row {
		out[k] = v
	}
	for k, v := range s.override {
		out[k] = v
	}
	return out
}
