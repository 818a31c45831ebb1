package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticPrecedence(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"20/4/5", 1},
		{"2*3+4*5", 26},
		{"-3+5", 2},
		{"-(2+3)*2", -10},
		{"0.5*4", 2},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.text, nil)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got.Value, tc.text)
	}
}

func TestRoundingFunctions(t *testing.T) {
	vars := Vars{}
	cases := []struct {
		text string
		want float64
	}{
		{"ROUNDUP(2.01)", 3},
		{"ROUNDDOWN(2.99)", 2},
		{"ROUND(2.5)", 3},
		{"ROUND(2.4)", 2},
		{"roundup(2.0)", 2},
		{"MAX(3,7,2)", 7},
		{"MIN(3,7,2)", 2},
		{"MAX(1)", 1},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.text, vars)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got.Value, tc.text)
	}
}

func TestVariableSubstitution(t *testing.T) {
	vars := Vars{"Quantity": 95, "post_spacing": 8}
	got, err := Evaluate("ROUNDUP([Quantity]/[post_spacing])+1", vars)
	require.NoError(t, err)
	assert.Equal(t, 13.0, got.Value)
	assert.Empty(t, got.Missing)
}

func TestMissingVariableDefaultsToZero(t *testing.T) {
	got, err := Evaluate("[unknown]+5", Vars{})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Value)
	assert.Equal(t, []string{"unknown"}, got.Missing)
}

func TestIfCondition(t *testing.T) {
	cases := []struct {
		text string
		vars Vars
		want float64
	}{
		{"IF([Gates]>0, [Gates]*2, 0)", Vars{"Gates": 3}, 6},
		{"IF([Gates]>0, [Gates]*2, 0)", Vars{"Gates": 0}, 0},
		{"IF([a]=[b], 1, 2)", Vars{"a": 4, "b": 4}, 1},
		{"IF([a]<>[b], 1, 2)", Vars{"a": 4, "b": 4}, 2},
		{"IF([a]<=3, 10, 20)", Vars{"a": 3}, 10},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.text, tc.vars)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got.Value, tc.text)
	}
}

func TestIfSkipsUntakenBranch(t *testing.T) {
	// The guard keeps the division from ever executing.
	got, err := Evaluate("IF([lines]=0, 0, [total]/[lines])", Vars{"lines": 0, "total": 100})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Value)
}

func TestDivisionByZero(t *testing.T) {
	_, err := Evaluate("10/[lines]", Vars{"lines": 0})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSyntaxErrors(t *testing.T) {
	cases := []string{
		"",
		"(1+2",
		"1+2)",
		"1+",
		"[unterminated",
		"[]",
		"1 2",
		"MAX()",
		"IF(1,2)",
		"1 & 2",
	}
	for _, text := range cases {
		_, err := Evaluate(text, nil)
		assert.Error(t, err, "%q should not parse", text)
	}
}

func TestUnknownFunction(t *testing.T) {
	_, err := Evaluate("SQRT(4)", nil)
	require.ErrorIs(t, err, ErrUnknownFunction)
}

func TestDeterministicEvaluation(t *testing.T) {
	expr, err := Parse("ROUNDUP([Quantity]/8)+MAX([Lines],1)*0.5")
	require.NoError(t, err)

	vars := Vars{"Quantity": 95, "Lines": 3}
	first, err := expr.Eval(vars)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := expr.Eval(vars)
		require.NoError(t, err)
		assert.Equal(t, first.Value, again.Value)
	}
}

func TestVariablesListing(t *testing.T) {
	expr, err := Parse("[a]+[b]*[a]-IF([c]>0,[d],0)")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, expr.Variables())
}
