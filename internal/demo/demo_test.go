package demo

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllModes(t *testing.T) {
	for _, dedup := range []bool{false, true} {
		for _, mode := range Modes {
			cfg := DefaultConfig()
			cfg.Mode = mode
			cfg.Dedup = dedup
			cfg.Timeout = 20 * time.Millisecond

			logger, _ := test.NewNullLogger()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			r, err := Run(ctx, cfg, logger)
			cancel()

			require.NoError(t, err, "mode=%s dedup=%v", mode, dedup)
			assert.True(t, r.OK(), "mode=%s dedup=%v: %+v", mode, dedup, r)
			assert.Equal(t, cfg.Producers*cfg.Items, r.Produced)
			assert.Len(t, r.PerConsumer, cfg.Consumers)
			assert.Equal(t, 0, r.Stats.Len)
			if dedup {
				assert.Equal(t, r.Produced, r.Rejected)
			} else {
				assert.Equal(t, 0, r.Rejected)
			}
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModePoll

	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, cfg, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunJoinsConsumersWhenProducerPanics(t *testing.T) {
	orig := newTag
	defer func() { newTag = orig }()
	var calls atomic.Int32
	newTag = func() string {
		if calls.Add(1) == 3 {
			panic("tag source failed")
		}
		return orig()
	}

	cfg := DefaultConfig()
	cfg.Mode = ModeWait
	logger, _ := test.NewNullLogger()

	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), cfg, logger)
		done <- err
	}()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tag source failed")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return; wait-mode consumers were left blocked")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Mode: "bogus"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "producers")
	assert.Contains(t, err.Error(), "consumers")
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestVerifyDetectsMismatch(t *testing.T) {
	r := verify(
		[][]string{{"a", "b"}, {"c"}},
		[][]string{{"a", "a"}, {"b"}},
	)
	assert.Equal(t, 3, r.Produced)
	assert.Equal(t, 3, r.Consumed)
	assert.Equal(t, 1, r.Duplicates)
	assert.Equal(t, 1, r.Missing)
	assert.False(t, r.OK())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Timed ")
	require.NoError(t, err)
	assert.Equal(t, ModeTimed, m)

	_, err = ParseMode("spin")
	assert.Error(t, err)
}

func TestValidateTimedNeedsTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeTimed
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
	assert.NoError(t, DefaultConfig().Validate())
}

func TestRender(t *testing.T) {
	r := verify([][]string{{"a"}}, [][]string{{"a"}})
	r.Config = DefaultConfig()

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "Produced")
	assert.Contains(t, out, "OK")
}
