package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubConfigSource struct {
	cfg   *Config
	err   error
	calls atomic.Int32
}

func (s *stubConfigSource) FetchConfig(context.Context) (*Config, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

type stubScript struct {
	present bool
	loadErr error
	loads   atomic.Int32
}

func (s *stubScript) Loaded() bool { return s.present }

func (s *stubScript) Load(_ context.Context, _ *Config) error {
	s.loads.Add(1)
	return s.loadErr
}

func TestLoader_AlreadyPresentSkipsConfigFetch(t *testing.T) {
	src := &stubConfigSource{}
	l := NewLoader(src, &stubScript{present: true})

	require.Equal(t, LoaderStateUnloaded, l.State())
	require.NoError(t, l.EnsureReady(context.Background()))
	require.Equal(t, LoaderStateReady, l.State())
	require.Zero(t, src.calls.Load())
}

func TestLoader_LoadsOnceForAllCallers(t *testing.T) {
	src := &stubConfigSource{cfg: &Config{ClientKey: "ck"}}
	script := &stubScript{}
	l := NewLoader(src, script)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.EnsureReady(context.Background()))
		}()
	}
	wg.Wait()

	require.Equal(t, LoaderStateReady, l.State())
	require.Equal(t, int32(1), script.loads.Load())
	require.Equal(t, int32(1), src.calls.Load())
}

func TestLoader_MissingClientKeyFails(t *testing.T) {
	l := NewLoader(&stubConfigSource{cfg: &Config{}}, &stubScript{})
	err := l.EnsureReady(context.Background())
	require.Error(t, err)
	require.Equal(t, LoaderStateFailed, l.State())
}

func TestLoader_FailureStickyUntilLastRelease(t *testing.T) {
	src := &stubConfigSource{err: errors.New("config endpoint down")}
	script := &stubScript{}
	l := NewLoader(src, script)

	l.Acquire()
	require.Error(t, l.EnsureReady(context.Background()))
	require.Equal(t, LoaderStateFailed, l.State())

	// Still failed while held; no second load attempt happens.
	require.Error(t, l.EnsureReady(context.Background()))
	require.Equal(t, int32(1), src.calls.Load())

	// Last release resets the handle, so the next caller can retry.
	l.Release()
	require.Equal(t, LoaderStateUnloaded, l.State())

	src.err = nil
	src.cfg = &Config{ClientKey: "ck"}
	require.NoError(t, l.EnsureReady(context.Background()))
	require.Equal(t, LoaderStateReady, l.State())
}

func TestLoader_ScriptLoadErrorSurfaces(t *testing.T) {
	l := NewLoader(&stubConfigSource{cfg: &Config{ClientKey: "ck"}}, &stubScript{loadErr: errors.New("script 404")})
	err := l.EnsureReady(context.Background())
	require.ErrorContains(t, err, "script 404")
	require.Equal(t, LoaderStateFailed, l.State())
}
