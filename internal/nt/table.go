package nt

import "strings"

// Table is a view of one path prefix in the cache. Reads never block and
// never fail; missing or mistyped entries resolve to the caller's default.
type Table struct {
	cache *Cache
	path  string
}

// JoinPath joins path segments with "/" and a single leading slash.
func JoinPath(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (t *Table) Path() string { return t.path }

func (t *Table) SubTable(name string) *Table {
	return &Table{cache: t.cache, path: JoinPath(t.path, name)}
}

func (t *Table) GetValue(key string) (Value, bool) {
	if t == nil || t.cache == nil {
		return Value{}, false
	}
	return t.cache.Get(JoinPath(t.path, key))
}

func (t *Table) GetNumber(key string, def float64) float64 {
	v, ok := t.GetValue(key)
	if !ok {
		return def
	}
	n, ok := v.Double()
	if !ok {
		return def
	}
	return n
}

// GetNumberArray reports false when the entry is absent or not a number array.
func (t *Table) GetNumberArray(key string) ([]float64, bool) {
	v, ok := t.GetValue(key)
	if !ok {
		return nil, false
	}
	return v.DoubleArray()
}

func (t *Table) GetBoolean(key string, def bool) bool {
	v, ok := t.GetValue(key)
	if !ok {
		return def
	}
	b, ok := v.Boolean()
	if !ok {
		return def
	}
	return b
}

func (t *Table) GetString(key string, def string) string {
	v, ok := t.GetValue(key)
	if !ok {
		return def
	}
	s, ok := v.Text()
	if !ok {
		return def
	}
	return s
}
