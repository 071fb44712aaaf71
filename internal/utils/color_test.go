package utils

import "testing"

func TestValidHexColor(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"#3b82f6", true},
		{"#FFF", true},
		{"#ff0000", true},
		{"", false},
		{"3b82f6", false},
		{"#3b82f", false},
		{"#gggggg", false},
		{"blue", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidHexColor(tt.input); got != tt.want {
				t.Errorf("ValidHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
