package model

import (
	"log/slog"

	"github.com/javagg/layoutview"
)

// Builder accumulates structures into a Library. It enforces name
// uniqueness at insertion time so a finished library never carries
// conflicting definitions.
//
// Builder is not safe for concurrent use.
type Builder struct {
	lib  *Library
	cur  *Structure
	logr *slog.Logger
}

// NewBuilder starts an empty library with default units.
func NewBuilder(name string) *Builder {
	return &Builder{
		lib: &Library{
			Name:       name,
			Units:      DefaultUnits,
			structures: make(map[string]*Structure),
		},
		logr: layoutview.Logger(),
	}
}

// SetName overrides the library name.
func (b *Builder) SetName(name string) {
	b.lib.Name = name
}

// SetUnits overrides the library units.
func (b *Builder) SetUnits(u Units) {
	b.lib.Units = u
}

// BeginStructure opens a new structure. Elements added afterwards belong
// to it until the next BeginStructure or Build call. Returns
// DuplicateNameError if the name was already defined.
func (b *Builder) BeginStructure(name string) error {
	if _, ok := b.lib.structures[name]; ok {
		return &DuplicateNameError{Name: name}
	}
	s := &Structure{Name: name}
	b.lib.structures[name] = s
	b.lib.order = append(b.lib.order, name)
	b.cur = s
	return nil
}

// AddPolygon appends a polygon to the open structure. Polygons with fewer
// than three vertices are kept; the geometry stage decides how to report
// them.
func (b *Builder) AddPolygon(p Polygon) {
	if b.cur == nil {
		b.logr.Warn("polygon outside structure dropped")
		return
	}
	b.cur.Elements = append(b.cur.Elements, p)
}

// AddPath appends a path to the open structure.
func (b *Builder) AddPath(p Path) {
	if b.cur == nil {
		b.logr.Warn("path outside structure dropped")
		return
	}
	b.cur.Elements = append(b.cur.Elements, p)
}

// AddInstance appends a placement to the open structure. The referenced
// name is not checked here; forward references are legal and the resolver
// validates them against the finished library.
func (b *Builder) AddInstance(in Instance) {
	if b.cur == nil {
		b.logr.Warn("instance outside structure dropped",
			slog.String("target", in.Structure))
		return
	}
	b.cur.Elements = append(b.cur.Elements, in)
}

// Build finalizes and returns the library. The builder must not be used
// afterwards.
func (b *Builder) Build() *Library {
	lib := b.lib
	b.lib = nil
	b.cur = nil
	b.logr.Info("library built",
		slog.String("name", lib.Name),
		slog.Int("structures", lib.Len()))
	return lib
}
