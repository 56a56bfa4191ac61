package grove

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownClass is returned when a manifest names an unregistered class.
var ErrUnknownClass = errors.New("grove: unknown entity class")

// ClassFactory builds an entity of a registered class from its props.
type ClassFactory func(p Props) *Entity

var classRegistry = map[string]ClassFactory{
	"Entity":       func(p Props) *Entity { return NewEntity("Entity", p) },
	"Sprite":       NewSprite,
	"MovingSprite": NewMovingSprite,
}

// RegisterClass makes a class available to manifests and NewFromClass.
func RegisterClass(name string, factory ClassFactory) {
	if name == "" || factory == nil {
		panic("grove: RegisterClass needs a name and a factory")
	}
	classRegistry[name] = factory
}

// RegisteredClasses returns the registered class names, sorted.
func RegisteredClasses() []string {
	names := make([]string, 0, len(classRegistry))
	for name := range classRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFromClass builds an entity through a registered class factory.
func NewFromClass(class string, p Props) (*Entity, error) {
	f, ok := classRegistry[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return f(p), nil
}

// ManifestEntry describes one entity to insert into a stage.
type ManifestEntry struct {
	Class      string          `yaml:"class"`
	Props      Props           `yaml:"props"`
	Center     *Vec2           `yaml:"center"`
	Color      string          `yaml:"color"`
	Components []string        `yaml:"components"`
	Children   []ManifestEntry `yaml:"children"`
}

// Manifest is the YAML document read by LoadManifest.
type Manifest struct {
	Entities []ManifestEntry `yaml:"entities"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i := range m.Entities {
		if m.Entities[i].Class == "" {
			return nil, fmt.Errorf("parse manifest: entity %d has no class", i)
		}
	}
	return &m, nil
}

// LoadManifest reads and decodes a YAML manifest from fsys.
func LoadManifest(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}
	return ParseManifest(data)
}

// build creates the entry's entity and attaches its components.
func (m ManifestEntry) build() (*Entity, error) {
	e, err := NewFromClass(m.Class, m.Props)
	if err != nil {
		return nil, err
	}
	if m.Center != nil {
		e.SetCenter(m.Center.X, m.Center.Y)
	}
	if m.Color != "" {
		c, ok := ParseColor(m.Color)
		if !ok {
			return nil, fmt.Errorf("grove: unknown color %q", m.Color)
		}
		e.P.Color = c
	}
	if len(m.Components) > 0 {
		if err := e.Add(m.Components...); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// LoadAssets inserts an entity for every entry, nesting children inside
// their parent.
func (s *Stage) LoadAssets(entries []ManifestEntry) error {
	return s.loadEntries(entries, nil)
}

func (s *Stage) loadEntries(entries []ManifestEntry, container *Entity) error {
	for _, entry := range entries {
		e, err := entry.build()
		if err != nil {
			return err
		}
		if err := s.InsertInto(e, container); err != nil {
			return fmt.Errorf("insert %s: %w", entry.Class, err)
		}
		if len(entry.Children) > 0 {
			if err := s.loadEntries(entry.Children, e); err != nil {
				return err
			}
		}
	}
	return nil
}
