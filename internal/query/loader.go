package query

import (
	"fmt"
	"sync"

	"github.com/heartmarshall/kodict/internal/store"
)

// Loader creates an Engine on first use. The load runs at most once; its
// result, including a failure, is returned to every caller.
type Loader struct {
	engine func() (*Engine, error)
}

// NewLoader returns a Loader that builds its Engine from the store returned
// by load.
func NewLoader(load func() (*store.Store, error), opts ...Option) *Loader {
	return &Loader{
		engine: sync.OnceValues(func() (*Engine, error) {
			s, err := load()
			if err != nil {
				return nil, fmt.Errorf("load store: %w", err)
			}
			return New(s, opts...), nil
		}),
	}
}

// Engine returns the loaded Engine.
func (l *Loader) Engine() (*Engine, error) {
	return l.engine()
}
