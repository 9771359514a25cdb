package identity

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverTaken(ctx context.Context, candidate string) (bool, error) {
	return false, nil
}

func TestBusinessIDGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("drops first three runes and appends a 4-digit suffix", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		id, err := gen.Generate(ctx, "JonDoe", neverTaken)

		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^doe_\d{4}$`), id)
	})

	t.Run("lowercases and trims the name", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		id, err := gen.Generate(ctx, "  AcmeTraders  ", neverTaken)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "etraders_"))
	})

	t.Run("short names yield suffix-only ids", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		id, err := gen.Generate(ctx, "Bob", neverTaken)

		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^_\d{4}$`), id)
	})

	t.Run("retries with a different suffix when the candidate is taken", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(42))

		var candidates []string
		isTaken := func(ctx context.Context, candidate string) (bool, error) {
			candidates = append(candidates, candidate)
			return len(candidates) == 1, nil
		}

		id, err := gen.Generate(ctx, "JonDoe", isTaken)

		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, candidates[1], id)
		assert.NotEqual(t, candidates[0], candidates[1])
	})

	t.Run("returns GENERATION_EXHAUSTED after the retry bound", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		attempts := 0
		alwaysTaken := func(ctx context.Context, candidate string) (bool, error) {
			attempts++
			return true, nil
		}

		_, err := gen.Generate(ctx, "JonDoe", alwaysTaken)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrGenerationExhausted)
		assert.Equal(t, businessIDMaxAttempts, attempts)
	})

	t.Run("propagates check errors", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		checkErr := errors.New("storage down")
		failing := func(ctx context.Context, candidate string) (bool, error) {
			return false, checkErr
		}

		_, err := gen.Generate(ctx, "JonDoe", failing)

		require.Error(t, err)
		assert.ErrorIs(t, err, checkErr)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := gen.Generate(cancelled, "JonDoe", neverTaken)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBusinessIDGenerator_UnicodeNames(t *testing.T) {
	gen := NewBusinessIDGeneratorWithSource(rand.NewSource(1))

	id, err := gen.Generate(context.Background(), "Überkäse", neverTaken)

	require.NoError(t, err)
	// Runes, not bytes: drops "übe", keeps "rkäse"
	assert.True(t, strings.HasPrefix(id, "rkäse_"))
}
