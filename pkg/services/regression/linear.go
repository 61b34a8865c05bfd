package regression

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/de-tools/viability/pkg/models/domain"
)

const ridge = 1e-6

// LinearRegressor fits y = b0 + b·x by least squares with a small ridge
// penalty on the feature weights, which keeps tiny tables solvable.
type LinearRegressor struct{}

func NewLinearRegressor() *LinearRegressor {
	return &LinearRegressor{}
}

func (l *LinearRegressor) FitPredict(ctx context.Context, req Request) (Response, error) {
	if err := validateTable(req.Table); err != nil {
		return Response{}, err
	}
	train, test, err := Split(req.Table.Len(), req.TestFraction, req.Seed)
	if err != nil {
		return Response{}, err
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	coef, err := fit(req.Table, train)
	if err != nil {
		return Response{}, err
	}

	predictions := make([]float64, 0, len(test))
	for _, idx := range test {
		predictions = append(predictions, predict(coef, req.Table.Rows[idx]))
	}
	return Response{Predictions: predictions}, nil
}

func predict(coef []float64, row []float64) float64 {
	y := coef[0]
	for j, x := range row {
		y += coef[j+1] * x
	}
	return y
}

// fit builds the design matrix with a leading intercept column and one
// extra row of sqrt(λ) per feature weight, so the plain least-squares
// solution is the ridge solution with the intercept left unpenalized.
func fit(t domain.Table, rows []int) ([]float64, error) {
	p := len(t.Features) + 1
	n := len(rows) + p - 1

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, idx := range rows {
		x.Set(i, 0, 1)
		for j, v := range t.Rows[idx] {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, t.Target[idx])
	}
	penalty := math.Sqrt(ridge)
	for j := 1; j < p; j++ {
		x.Set(len(rows)+j-1, j, penalty)
	}

	return solve(x, y)
}

// solve returns the least-squares β for xβ ≈ y. A singular or
// ill-conditioned system is reported as a division by zero.
func solve(x *mat.Dense, y *mat.VecDense) ([]float64, error) {
	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, fmt.Errorf("regression system is singular: %v: %w", err, domain.ErrDivisionByZero)
	}

	out := make([]float64, beta.Len())
	for i := range out {
		out[i] = beta.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("regression coefficient %d is not finite: %w", i, domain.ErrDivisionByZero)
		}
	}
	return out, nil
}
