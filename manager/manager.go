// Package manager implements §6.3: the manager owns a single storage handle
// and exposes every public operation grouped into the six behavioral
// namespaces named there — Create, Update, Get, Find, Reset, Delete. It is
// the only package that calls into more than one of seeding/layout/graph/
// engine/bestof/standings at once, since it is the one place that knows how
// to load a stage's rows out of storage, hand them to the pure algorithm
// packages, and persist whatever comes back in the dependency order §5
// requires.
package manager

import "github.com/coinflip-gg/bracketry/storage"

// Manager is constructed once per storage backend and is safe for concurrent
// use as long as the underlying storage.Storage is; it holds no state of its
// own beyond the handle.
type Manager struct {
	store storage.Storage

	Create *createOps
	Update *updateOps
	Get    *getOps
	Find   *findOps
	Reset  *resetOps
	Delete *deleteOps
}

// New wires the six namespaces around a shared storage handle.
func New(store storage.Storage) *Manager {
	m := &Manager{store: store}
	m.Create = &createOps{m: m}
	m.Update = &updateOps{m: m}
	m.Get = &getOps{m: m}
	m.Find = &findOps{m: m}
	m.Reset = &resetOps{m: m}
	m.Delete = &deleteOps{m: m}
	return m
}
