package errors

import (
	"testing"
)

func TestValidateLayoutID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef", false},

		{"empty", "", true},
		{"dashed uuid", "01234567-89ab-cdef-0123-456789abcdef", true},
		{"uppercase", "0123456789ABCDEF0123456789ABCDEF", true},
		{"too short", "abc", true},
		{"path traversal", "../../../../etc/passwd0123456789", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayoutID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLayoutID) {
				t.Errorf("ValidateLayoutID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLayoutID)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "docs/corpus.json", false},
		{"absolute", "/tmp/corpus.yaml", false},
		{"dotted name", "my..corpus.toml", false},

		{"empty", "", true},
		{"traversal", "docs/../../secret.json", true},
		{"null byte", "doc\x00.json", true},
		{"newline", "doc\n.json", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"black", false},
		{"#56e37c", false},
		{"#fff", false},

		{"#12345", true},
		{"red; stroke: blue", true},
		{"url(#x)", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
