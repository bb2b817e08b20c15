package model

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// NormalizarCategoria returns the identity of a category display name:
// Unicode lowercase, trimmed, inner whitespace collapsed to one space.
func NormalizarCategoria(nombre string) string {
	return strings.Join(strings.Fields(lower.String(nombre)), " ")
}

// Categoria is one entry of the category catalog.
type Categoria struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// CategoriaIndex maps a normalized category id to its canonical display name.
// Last write wins.
type CategoriaIndex map[string]string

// NewCategoriaIndex builds the index from the full product list, in order.
func NewCategoriaIndex(productos []Producto) CategoriaIndex {
	idx := make(CategoriaIndex, len(productos))
	for i := range productos {
		idx.Set(productos[i].Categoria)
	}
	return idx
}

// Set records nombre as the canonical name of its category and returns the id.
// Blank names are ignored.
func (idx CategoriaIndex) Set(nombre string) string {
	id := NormalizarCategoria(nombre)
	if id == "" {
		return ""
	}
	idx[id] = strings.Join(strings.Fields(nombre), " ")
	return id
}

// Nombre returns the display name for id, or "" if unknown.
func (idx CategoriaIndex) Nombre(id string) string { return idx[id] }

// List returns the catalog sorted by display name.
func (idx CategoriaIndex) List() []Categoria {
	out := make([]Categoria, 0, len(idx))
	for id, nombre := range idx {
		out = append(out, Categoria{ID: id, Nombre: nombre})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nombre == out[j].Nombre {
			return out[i].ID < out[j].ID
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out
}
