package money_test

import (
	"testing"

	"github.com/flowpayhq/flowpay/pkg/money"
	"github.com/stretchr/testify/require"
)

func TestValidAmount(t *testing.T) {
	valid := []string{"0", "1", "20", "10.5", "0.0002", "123.456789"}
	for _, s := range valid {
		require.True(t, money.ValidAmount(s), s)
	}

	invalid := []string{"", "-1", "-0.5", "+1", "1.", ".5", "1,5", "1e5", "abc", "10.5.1", " 1", "1 "}
	for _, s := range invalid {
		require.False(t, money.ValidAmount(s), s)
	}
}

func TestFracDigits(t *testing.T) {
	require.Equal(t, 0, money.FracDigits("20"))
	require.Equal(t, 1, money.FracDigits("10.5"))
	require.Equal(t, 4, money.FracDigits("0.0002"))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		amount, max, want string
	}{
		{"10.5", "20", "10.5"},
		{"25", "20", "20"},
		{"0", "20", "0"},
		{"20", "20", "20"},
		{"20.000001", "20", "20"},
		{"-3", "20", "0"},
	}
	for _, tt := range tests {
		got, err := money.Clamp(tt.amount, tt.max)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)

		// clamping an already clamped value changes nothing
		again, err := money.Clamp(got, tt.max)
		require.NoError(t, err)
		require.Equal(t, got, again)
	}

	_, err := money.Clamp("abc", "20")
	require.Error(t, err)
}

func TestTotal(t *testing.T) {
	tests := []struct {
		amount, fee, want string
	}{
		{"10.5", "0.5", "11.0"},
		{"1.5", "0.0002", "1.5002"},
		{"3", "2", "5"},
		{"0.1", "0.2", "0.3"},
		{"1.50", "0.5", "2.00"},
	}
	for _, tt := range tests {
		got, err := money.Total(tt.amount, tt.fee)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := money.Total("x", "0.5")
	require.Error(t, err)
}

func TestAdd(t *testing.T) {
	got, err := money.Add("0.1", "0.2")
	require.NoError(t, err)
	require.Equal(t, "0.3", got)
}
