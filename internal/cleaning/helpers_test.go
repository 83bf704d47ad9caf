package cleaning

import (
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

func nums(name string, vals ...any) *table.Column {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
		case int:
			out[i] = table.Number(float64(x))
		case float64:
			out[i] = table.Number(x)
		}
	}
	return &table.Column{Name: name, Kind: table.KindNumeric, Values: out}
}

func texts(name string, vals ...any) *table.Column {
	out := make([]table.Value, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = table.Text(s)
		}
	}
	return &table.Column{Name: name, Kind: table.KindCategorical, Values: out}
}

func floatsOf(t *testing.T, c *table.Column) []float64 {
	t.Helper()
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		f, ok := v.Float()
		if !ok {
			t.Fatalf("%s[%d] is not a number: %v", c.Name, i, v)
		}
		out[i] = f
	}
	return out
}
