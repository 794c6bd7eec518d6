package catalog

import "fmt"

// Catalog holds the data sources available to report builders. It is
// built once at startup and treated as immutable afterwards.
type Catalog struct {
	sources []DataSource
	byID    map[string]int
}

// NewCatalog builds a catalog from the given sources. Duplicate IDs are
// rejected.
func NewCatalog(sources []DataSource) (*Catalog, error) {
	c := &Catalog{
		sources: sources,
		byID:    make(map[string]int, len(sources)),
	}
	for i, s := range sources {
		if s.ID == "" {
			return nil, fmt.Errorf("data source at index %d has no id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate data source id %q", s.ID)
		}
		c.byID[s.ID] = i
	}
	return c, nil
}

// Default returns the catalog of built-in reporting sources.
func Default() *Catalog {
	c, err := NewCatalog(builtinSources())
	if err != nil {
		panic(err)
	}
	return c
}

// Sources returns all data sources in declaration order.
func (c *Catalog) Sources() []DataSource {
	out := make([]DataSource, len(c.sources))
	copy(out, c.sources)
	return out
}

// Source returns the data source with the given id.
func (c *Catalog) Source(id string) (DataSource, bool) {
	i, ok := c.byID[id]
	if !ok {
		return DataSource{}, false
	}
	return c.sources[i], true
}

// Select resolves the given ids against the catalog, preserving order and
// skipping unknown ids.
func (c *Catalog) Select(ids []string) []DataSource {
	var out []DataSource
	for _, id := range ids {
		if s, ok := c.Source(id); ok {
			out = append(out, s)
		}
	}
	return out
}
