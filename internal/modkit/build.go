package modkit

import (
	"net/http"

	str "codeexplainer/internal/platform/strings"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
// def supplies the name and prefix a module uses when the caller does not override them
// an empty prefix is kept for modules that mount at the api root
func Build(def Built, opts ...Option) Built {
	c := buildCfg{name: def.Name, prefix: def.Prefix}
	for _, o := range opts {
		o(&c)
	}
	if c.prefix != "" {
		c.prefix = str.MustPrefix(c.prefix)
	}
	return Built{
		Name:   str.MustString(c.name, "module name"),
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// PortsAs returns the injected ports as T
func PortsAs[T any](b Built) (T, bool) {
	p, ok := b.Ports.(T)
	return p, ok
}
