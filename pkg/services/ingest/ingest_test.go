package ingest

import (
	"testing"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	t.Run("csv rows become records", func(t *testing.T) {
		got, err := Text("competitors.csv", []byte("name,revenue\nAcme, 2000000\nGlobex,1500000\n"))
		require.NoError(t, err)
		assert.Equal(t, "name: Acme, revenue: 2000000\nname: Globex, revenue: 1500000", got)
	})

	t.Run("plain text is trimmed", func(t *testing.T) {
		got, err := Text("notes.txt", []byte("  Acme leads the market.\n"))
		require.NoError(t, err)
		assert.Equal(t, "Acme leads the market.", got)
	})

	t.Run("binary is rejected", func(t *testing.T) {
		_, err := Text("x.bin", []byte{0xff, 0xfe, 0x00})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("empty csv", func(t *testing.T) {
		_, err := Text("x.csv", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestBalanceSheet(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		data  string
		want  domain.BalanceSheet
		isErr bool
	}{
		{
			name: "json object",
			file: "bs.json",
			data: `{"cash": 500000, "Assets": 2000000, "liabilities": "1000000", "currency": "EUR"}`,
			want: domain.BalanceSheet{"cash": 500000, "assets": 2000000, "liabilities": 1000000},
		},
		{
			name: "field value csv",
			file: "bs.csv",
			data: "field,value\ncash,500000\nassets,2000000\nnote,audited\n",
			want: domain.BalanceSheet{"cash": 500000, "assets": 2000000},
		},
		{
			name: "single row csv",
			file: "bs.csv",
			data: "cash,assets,liabilities\n500000,2000000,1000000\n",
			want: domain.BalanceSheet{"cash": 500000, "assets": 2000000, "liabilities": 1000000},
		},
		{name: "multi row csv", file: "bs.csv", data: "cash\n1\n2\n", isErr: true},
		{name: "json array", file: "bs.json", data: `[1, 2]`, isErr: true},
		{name: "plain text", file: "bs.txt", data: "cash is fine", isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, text, err := BalanceSheet(tt.file, []byte(tt.data))
			if tt.isErr {
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, text)
		})
	}
}

func TestMarketData(t *testing.T) {
	t.Run("numeric table", func(t *testing.T) {
		table, text, err := MarketData("market.csv", []byte("feature1,feature2,target\n1,4,100\n2,5,200\n3,6,300\n"), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"feature1", "feature2"}, table.Features)
		assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, table.Rows)
		assert.Equal(t, []float64{100, 200, 300}, table.Target)
		assert.Contains(t, text, "target: 100")
	})

	t.Run("non numeric cell", func(t *testing.T) {
		_, _, err := MarketData("market.csv", []byte("feature1,target\nabc,1\n"), "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("no target column", func(t *testing.T) {
		_, _, err := MarketData("market.csv", []byte("feature1,revenue\n1,1\n"), "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("not csv", func(t *testing.T) {
		_, _, err := MarketData("market.xlsx", []byte("x"), "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestCashFlows(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []float64
		isErr bool
	}{
		{name: "blank", raw: "  ", want: nil},
		{name: "json", raw: "[-100000, 20000, 30000]", want: []float64{-100000, 20000, 30000}},
		{name: "comma list", raw: "-100, 60 ,60", want: []float64{-100, 60, 60}},
		{name: "bad entry", raw: "-100, sixty", isErr: true},
		{name: "bad json", raw: "[1, ", isErr: true},
		{name: "null entry", raw: "[-100, null, 60]", isErr: true},
		{name: "infinite entry", raw: "-100, Inf", isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CashFlows(tt.raw)
			if tt.isErr {
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount(t *testing.T) {
	v, err := Amount("discount_rate", " 0.1 ")
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)

	_, err = Amount("investment_amount", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = Amount("investment_amount", "lots")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	for _, raw := range []string{"Inf", "+Infinity", "NaN", "1e400"} {
		_, err = Amount("investment_amount", raw)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, raw)
	}
}

func TestTableText(t *testing.T) {
	table := domain.Table{
		Features: []string{"feature1", "feature2"},
		Rows:     [][]float64{{1, 4.5}, {2, 5}},
		Target:   []float64{100, 200},
	}

	assert.Equal(t,
		"feature1: 1, feature2: 4.5, sales: 100\nfeature1: 2, feature2: 5, sales: 200",
		TableText(table, "sales"))
	assert.Contains(t, TableText(table, ""), "target: 100")
}
