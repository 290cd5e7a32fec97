package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lucas-podkowa/library-service/pkg/breaker"
)

func TestBreaker_Call(t *testing.T) {
	okCall := func() error { return nil }
	failCall := func() error { return errors.New("service error") }

	t.Run("stays closed on successes", func(t *testing.T) {
		b := breaker.New(10, time.Second, 0.5, 3)
		for i := 0; i < 50; i++ {
			require.NoError(t, b.Call(okCall))
		}
	})

	t.Run("opens after failure threshold", func(t *testing.T) {
		b := breaker.New(4, time.Minute, 0.5, 3)
		require.Error(t, b.Call(failCall))
		require.Error(t, b.Call(failCall))
		// breaker is open now, calls are rejected without running fn
		err := b.Call(okCall)
		require.ErrorIs(t, err, breaker.ErrOpen)
	})

	t.Run("recovers after cooldown", func(t *testing.T) {
		b := breaker.New(2, 10*time.Millisecond, 0.5, 1)
		require.Error(t, b.Call(failCall))
		require.ErrorIs(t, b.Call(okCall), breaker.ErrOpen)

		time.Sleep(20 * time.Millisecond)
		// half-open: consecutive successes close it again
		require.NoError(t, b.Call(okCall))
		require.NoError(t, b.Call(okCall))
		require.NoError(t, b.Call(okCall))
	})

	t.Run("reopens on half-open failure", func(t *testing.T) {
		b := breaker.New(2, 10*time.Millisecond, 0.5, 2)
		require.Error(t, b.Call(failCall))
		require.ErrorIs(t, b.Call(okCall), breaker.ErrOpen)

		time.Sleep(20 * time.Millisecond)
		require.Error(t, b.Call(failCall))
		require.ErrorIs(t, b.Call(okCall), breaker.ErrOpen)
	})
}
