package checkout

import (
	"context"
	"errors"
	"sync"
)

// LoaderState tracks the lifecycle of the gateway's browser SDK handle.
type LoaderState string

const (
	LoaderStateUnloaded LoaderState = "unloaded"
	LoaderStateLoading  LoaderState = "loading"
	LoaderStateReady    LoaderState = "ready"
	LoaderStateFailed   LoaderState = "failed"
)

// Config is the public gateway configuration required to load the SDK.
type Config struct {
	ClientKey    string `json:"client_key"`
	IsProduction bool   `json:"is_production"`
}

// ConfigSource fetches the public gateway configuration.
type ConfigSource interface {
	FetchConfig(ctx context.Context) (*Config, error)
}

// ScriptLoader abstracts the host environment's script handling. Loaded
// reports whether the SDK is already present; Load installs it.
type ScriptLoader interface {
	Loaded() bool
	Load(ctx context.Context, cfg *Config) error
}

// Loader is a lazily-initialized, reference-counted handle on the gateway
// SDK. All callers share a single in-flight load; concurrent EnsureReady
// calls wait for the same result instead of racing independent loads.
type Loader struct {
	src    ConfigSource
	script ScriptLoader

	mu      sync.Mutex
	state   LoaderState
	refs    int
	loadErr error
	done    chan struct{}
}

func NewLoader(src ConfigSource, script ScriptLoader) *Loader {
	return &Loader{src: src, script: script, state: LoaderStateUnloaded}
}

func (l *Loader) State() LoaderState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Acquire registers a caller holding the handle.
func (l *Loader) Acquire() {
	l.mu.Lock()
	l.refs++
	l.mu.Unlock()
}

// Release drops a reference. When the last holder releases a failed handle,
// the state resets to unloaded so a later caller can retry the load.
func (l *Loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refs > 0 {
		l.refs--
	}
	if l.refs == 0 && l.state == LoaderStateFailed {
		l.state = LoaderStateUnloaded
		l.loadErr = nil
	}
}

// EnsureReady blocks until the SDK handle is ready or the load fails. If the
// SDK is already present in the environment it is marked ready immediately
// without fetching config.
func (l *Loader) EnsureReady(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case LoaderStateReady:
		l.mu.Unlock()
		return nil
	case LoaderStateFailed:
		err := l.loadErr
		l.mu.Unlock()
		return err
	case LoaderStateLoading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
			return l.EnsureReady(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if l.script.Loaded() {
		l.state = LoaderStateReady
		l.mu.Unlock()
		return nil
	}

	l.state = LoaderStateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	err := l.load(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = LoaderStateFailed
		l.loadErr = err
	} else {
		l.state = LoaderStateReady
		l.loadErr = nil
	}
	close(done)
	l.mu.Unlock()
	return err
}

func (l *Loader) load(ctx context.Context) error {
	cfg, err := l.src.FetchConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil || cfg.ClientKey == "" {
		return errors.New("gateway client key is not configured")
	}
	return l.script.Load(ctx, cfg)
}
