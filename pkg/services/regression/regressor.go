// Package regression is the numeric-regression collaborator of the market
// prediction: fit on a seeded train split of a feature/target table, predict
// the held-out rows.
package regression

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/de-tools/viability/pkg/models/domain"
)

type Request struct {
	Table        domain.Table
	TestFraction float64
	Seed         int64
}

type Response struct {
	// Predictions for the held-out rows, in split order.
	Predictions []float64
}

type Regressor interface {
	FitPredict(ctx context.Context, req Request) (Response, error)
}

// Split shuffles row indices with a seeded source and holds out
// ceil(n*testFraction) of them for testing. The same seed yields the same split.
func Split(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split needs at least 2 rows, got %d: %w", n, domain.ErrEmptyInput)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %g outside (0,1): %w", testFraction, domain.ErrInvalidRequest)
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func validateTable(t domain.Table) error {
	if t.Empty() {
		return fmt.Errorf("market data table: %w", domain.ErrEmptyInput)
	}
	if len(t.Features) == 0 {
		return fmt.Errorf("market data table has no feature columns: %w", domain.ErrEmptyInput)
	}
	if len(t.Target) != len(t.Rows) {
		return fmt.Errorf("%d rows but %d targets: %w", len(t.Rows), len(t.Target), domain.ErrShapeMismatch)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Features) {
			return fmt.Errorf("row %d has %d values for %d features: %w", i, len(row), len(t.Features), domain.ErrShapeMismatch)
		}
	}
	return nil
}
