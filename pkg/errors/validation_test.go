package errors

import (
	"testing"
)

func TestValidatePageRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative png", "pages/page-1.png", false},
		{"http url", "https://example.com/page-1.png", false},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", false},
		{"inner dots cleaned", "pages/../page-1.png", false},

		{"empty", "", true},
		{"parent traversal", "../secret.png", true},
		{"bare parent", "..", true},
		{"control char", "page\x01.png", true},
		{"too long", string(make([]byte, 5000)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePageRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePageRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDocument) {
				t.Errorf("ValidatePageRef(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidDocument)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	if err := ValidateSessionID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, bad := range []string{"", "abc", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", "../6ba7b810"} {
		if err := ValidateSessionID(bad); err == nil {
			t.Errorf("ValidateSessionID(%q) = nil, want error", bad)
		}
	}
}
