package regression

import (
	"context"
	"testing"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func linearTable(n int) domain.Table {
	t := domain.Table{Features: []string{"feature1", "feature2"}}
	for i := 0; i < n; i++ {
		f1, f2 := float64(i), float64(i*i%7)
		t.Rows = append(t.Rows, []float64{f1, f2})
		t.Target = append(t.Target, 10+3*f1-2*f2)
	}
	return t
}

func TestSplit(t *testing.T) {
	t.Run("sizes follow ceil of fraction", func(t *testing.T) {
		train, test, err := Split(10, 0.2, 42)
		require.NoError(t, err)
		assert.Len(t, test, 2)
		assert.Len(t, train, 8)

		train, test, err = Split(3, 0.2, 42)
		require.NoError(t, err)
		assert.Len(t, test, 1)
		assert.Len(t, train, 2)
	})

	t.Run("same seed same split", func(t *testing.T) {
		train1, test1, err := Split(20, 0.2, 7)
		require.NoError(t, err)
		train2, test2, err := Split(20, 0.2, 7)
		require.NoError(t, err)
		assert.Equal(t, train1, train2)
		assert.Equal(t, test1, test2)
	})

	t.Run("partition covers every row once", func(t *testing.T) {
		train, test, err := Split(15, 0.3, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, append(train, test...))
	})

	t.Run("too few rows", func(t *testing.T) {
		_, _, err := Split(1, 0.2, 42)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	})

	t.Run("bad fraction", func(t *testing.T) {
		_, _, err := Split(10, 1, 42)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestLinearRegressor_FitPredict_RecoversLinearModel(t *testing.T) {
	table := linearTable(30)

	resp, err := NewLinearRegressor().FitPredict(context.Background(), Request{
		Table: table, TestFraction: 0.2, Seed: 42,
	})

	require.NoError(t, err)
	require.Len(t, resp.Predictions, 6)
	_, test, _ := Split(30, 0.2, 42)
	for i, idx := range test {
		assert.InDelta(t, table.Target[idx], resp.Predictions[i], 1e-3)
	}
}

func TestLinearRegressor_FitPredict_TinyTable(t *testing.T) {
	table := domain.Table{
		Features: []string{"feature1", "feature2"},
		Rows:     [][]float64{{1, 4}, {2, 5}, {3, 6}},
		Target:   []float64{100, 200, 300},
	}

	resp, err := NewLinearRegressor().FitPredict(context.Background(), Request{
		Table: table, TestFraction: 0.2, Seed: 42,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Predictions, 1)
}

func TestLinearRegressor_FitPredict_InvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table domain.Table
		err   error
	}{
		{name: "empty", table: domain.Table{Features: []string{"a"}}, err: domain.ErrEmptyInput},
		{name: "no features", table: domain.Table{Rows: [][]float64{{}, {}}, Target: []float64{1, 2}}, err: domain.ErrEmptyInput},
		{
			name:  "ragged row",
			table: domain.Table{Features: []string{"a"}, Rows: [][]float64{{1}, {2, 3}}, Target: []float64{1, 2}},
			err:   domain.ErrShapeMismatch,
		},
		{
			name:  "target length",
			table: domain.Table{Features: []string{"a"}, Rows: [][]float64{{1}, {2}}, Target: []float64{1}},
			err:   domain.ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinearRegressor().FitPredict(context.Background(), Request{Table: tt.table, TestFraction: 0.2, Seed: 42})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLinearRegressor_FitPredict_CollinearFeatures(t *testing.T) {
	// Given a table whose second column duplicates the first
	table := domain.Table{Features: []string{"feature1", "feature2"}}
	for i := 0; i < 12; i++ {
		f := float64(i)
		table.Rows = append(table.Rows, []float64{f, f})
		table.Target = append(table.Target, 5+4*f)
	}

	// When
	resp, err := NewLinearRegressor().FitPredict(context.Background(), Request{
		Table: table, TestFraction: 0.25, Seed: 3,
	})

	// Then the ridge rows keep the system solvable
	require.NoError(t, err)
	_, test, _ := Split(12, 0.25, 3)
	require.Len(t, resp.Predictions, len(test))
	for i, idx := range test {
		assert.InDelta(t, table.Target[idx], resp.Predictions[i], 1e-3)
	}
}

func TestSolve_SingularSystem(t *testing.T) {
	x := mat.NewDense(3, 2, nil)
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := solve(x, y)

	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestSolve_ExactSystem(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
	})
	y := mat.NewVecDense(3, []float64{1, 3, 5})

	beta, err := solve(x, y)

	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, beta, 1e-9)
}
