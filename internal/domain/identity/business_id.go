package identity

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
)

const (
	businessIDTrimRunes   = 3
	businessIDSuffixRange = 10000
	businessIDMaxAttempts = 50
)

// TakenFunc reports whether a candidate business id is already in use
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// BusinessIDGenerator derives human-readable business ids from a business
// name. Uniqueness is delegated to the injected check; the final guarantee
// rests on the unique index at the storage layer, so callers must still be
// prepared for an insert conflict.
type BusinessIDGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewBusinessIDGenerator creates a generator with a time-seeded random source
func NewBusinessIDGenerator() *BusinessIDGenerator {
	return NewBusinessIDGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewBusinessIDGeneratorWithSource creates a generator with the given source
func NewBusinessIDGeneratorWithSource(src rand.Source) *BusinessIDGenerator {
	return &BusinessIDGenerator{rand: rand.New(src)}
}

// Generate produces a candidate of the form "<base>_<nnnn>": base is the
// lower-cased business name with its first 3 runes dropped (may be empty for
// short names), nnnn a random 4-digit code. It retries a bounded number of
// times while the check reports the candidate taken and returns
// GENERATION_EXHAUSTED once the bound is reached.
func (g *BusinessIDGenerator) Generate(ctx context.Context, businessName string, isTaken TakenFunc) (string, error) {
	base := businessIDBase(businessName)

	for attempt := 0; attempt < businessIDMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := fmt.Sprintf("%s_%04d", base, g.suffix())
		taken, err := isTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check business id availability: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", shared.ErrGenerationExhausted
}

func (g *BusinessIDGenerator) suffix() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Intn(businessIDSuffixRange)
}

func businessIDBase(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	runes := []rune(name)
	if len(runes) <= businessIDTrimRunes {
		return ""
	}
	return string(runes[businessIDTrimRunes:])
}
