package state

import (
	"context"
	"log/slog"
	"maps"
	"reflect"

	composite "github.com/goliatone/go-composite"
)

// PersistOption configures Persist.
type PersistOption func(*persistConfig)

type persistConfig struct {
	ctx     context.Context
	key     func(*composite.Instance) string
	onError func(*composite.Instance, error)
}

// WithKey overrides how an instance maps to a Ref key. Returning "" skips
// persistence for that instance.
func WithKey(key func(*composite.Instance) string) PersistOption {
	return func(cfg *persistConfig) {
		if key != nil {
			cfg.key = key
		}
	}
}

// WithContext sets the context passed to the store.
func WithContext(ctx context.Context) PersistOption {
	return func(cfg *persistConfig) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

// WithErrorHandler receives store failures. The default logs them through
// slog.Default at WARN level.
func WithErrorHandler(handler func(*composite.Instance, error)) PersistOption {
	return func(cfg *persistConfig) {
		if handler != nil {
			cfg.onError = handler
		}
	}
}

func elementKey(c *composite.Instance) string {
	if el := c.Element(); el != nil {
		return el.Key
	}
	return ""
}

func logPersistError(c *composite.Instance, err error) {
	slog.Default().Warn("state persistence failed",
		slog.String("component", c.Name()),
		slog.String("id", c.ID()),
		slog.Any("error", err))
}

// Persist returns a mixin that restores saved state in componentWillMount
// and saves state after updates that changed it and on unmount.
func Persist(store Store[composite.State], opts ...PersistOption) *composite.Spec {
	cfg := persistConfig{
		ctx:     context.Background(),
		key:     elementKey,
		onError: logPersistError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	refOf := func(c *composite.Instance) (Ref, bool) {
		key := cfg.key(c)
		if key == "" {
			return Ref{}, false
		}
		return Ref{Component: c.Name(), Key: key}, true
	}
	save := func(c *composite.Instance) {
		ref, ok := refOf(c)
		if !ok {
			return
		}
		if _, err := store.Save(cfg.ctx, ref, maps.Clone(c.State()), Meta{}); err != nil {
			cfg.onError(c, err)
		}
	}

	return &composite.Spec{
		ComponentWillMount: func(c *composite.Instance) {
			ref, ok := refOf(c)
			if !ok {
				return
			}
			saved, _, found, err := store.Load(cfg.ctx, ref)
			if err != nil {
				cfg.onError(c, err)
				return
			}
			if !found || len(saved) == 0 {
				return
			}
			if err := c.SetState(maps.Clone(saved)); err != nil {
				cfg.onError(c, err)
			}
		},
		ComponentDidUpdate: func(c *composite.Instance, _ composite.Props, prevState composite.State, _ composite.ContextMap) {
			if reflect.DeepEqual(prevState, c.State()) {
				return
			}
			save(c)
		},
		ComponentWillUnmount: save,
	}
}
