package climate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/field-telemetry-service/internal/domain"
)

var (
	// ErrUnknownField is returned when a field ID is not in the catalog.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldNameRequired is returned by Add for a blank name.
	ErrFieldNameRequired = errors.New("field name is required")
)

// DefaultLocation is used for fields added without a location.
const DefaultLocation = "DIT Pune"

// DefaultFields seed the catalog.
var DefaultFields = []domain.Field{
	{ID: "1", Name: "Farm 1", Location: "DIT Pune"},
	{ID: "2", Name: "Baramati", Location: "Baramati"},
}

// Catalog is the in-memory list of fields offered to the dashboard.
// It lives only for the process lifetime.
type Catalog struct {
	mu     sync.RWMutex
	fields []domain.Field
}

// NewCatalog creates a catalog holding a copy of fields.
func NewCatalog(fields []domain.Field) *Catalog {
	return &Catalog{fields: append([]domain.Field(nil), fields...)}
}

// List returns a copy of all fields in insertion order.
func (c *Catalog) List() []domain.Field {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Field(nil), c.fields...)
}

// Get looks up a field by ID.
func (c *Catalog) Get(id string) (domain.Field, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.fields {
		if f.ID == id {
			return f, nil
		}
	}
	return domain.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
}

// Add appends a field with the next sequential ID. An empty location falls
// back to defaultLocation.
func (c *Catalog) Add(name, location, defaultLocation string) (domain.Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Field{}, ErrFieldNameRequired
	}
	if strings.TrimSpace(location) == "" {
		location = defaultLocation
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	f := domain.Field{
		ID:       strconv.Itoa(len(c.fields) + 1),
		Name:     name,
		Location: location,
	}
	c.fields = append(c.fields, f)
	return f, nil
}
