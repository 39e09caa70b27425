package enhancer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPassthroughReturnsBaseBody(t *testing.T) {
	var e Passthrough
	body, err := e.Enhance(context.Background(), Request{BaseBody: "the archive groans"})
	require.NoError(t, err)
	require.Equal(t, "the archive groans", body)
}

type flakyEnhancer struct{ fail bool }

func (f flakyEnhancer) Enhance(ctx context.Context, req Request) (string, error) {
	if f.fail {
		return "", errors.New("enhancer: upstream timeout")
	}
	return "rewritten: " + req.BaseBody, nil
}

func TestFailureWindowOpensAndClosesOnSuccess(t *testing.T) {
	var w FailureWindow
	base := time.Unix(0, 0)

	require.False(t, w.RecordFailure(base, 10*time.Second))
	require.True(t, w.Failing())
	require.False(t, w.RecordFailure(base.Add(5*time.Second), 10*time.Second))
	require.True(t, w.RecordFailure(base.Add(11*time.Second), 10*time.Second), "window exceeds timeout")

	w.RecordSuccess()
	require.False(t, w.Failing())
	require.Equal(t, time.Duration(0), w.Since(base.Add(20*time.Second)))
}

func TestFailureWindowDoesNotResetStartOnRepeatedFailure(t *testing.T) {
	var w FailureWindow
	base := time.Unix(0, 0)
	w.RecordFailure(base, time.Minute)
	w.RecordFailure(base.Add(30*time.Second), time.Minute)
	require.Equal(t, 30*time.Second, w.Since(base.Add(30*time.Second)))
}

func TestFlakyEnhancerSurfacesError(t *testing.T) {
	e := flakyEnhancer{fail: true}
	_, err := e.Enhance(context.Background(), Request{BaseBody: "x"})
	require.Error(t, err)
}
