package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestAddBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		delta   int64
		want    int64
		wantErr bool
	}{
		{name: "plain", balance: 200, delta: -500, want: -300},
		{name: "up to the bound", balance: MaxAmount - 1, delta: 1, want: MaxAmount},
		{name: "down to the bound", balance: -MaxAmount + 1, delta: -1, want: -MaxAmount},
		{name: "past the bound", balance: MaxAmount, delta: 1, wantErr: true},
		{name: "past the negative bound", balance: -MaxAmount, delta: -1, wantErr: true},
		{name: "huge delta", balance: 0, delta: math.MaxInt64, wantErr: true},
		{name: "would wrap int64", balance: math.MaxInt64 - 1, delta: math.MaxInt64 - 1, wantErr: true},
		{name: "min int64", balance: 0, delta: math.MinInt64, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddBalance(tt.balance, tt.delta)
			if tt.wantErr {
				if !errors.Is(err, ErrAmountOutOfRange) {
					t.Fatalf("AddBalance() error = %v, want ErrAmountOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddBalance() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("AddBalance() = %d, want %d", got, tt.want)
			}
		})
	}
}
