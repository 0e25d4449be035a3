package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSceneLoad, cause, "failed to load scene")

	if err.Code != ErrCodeSceneLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSceneLoad)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodePropertyRead, "test"),
			code:     ErrCodePropertyRead,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodePropertyRead, "test"),
			code:     ErrCodeWrite,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeWrite, New(ErrCodePropertyRead, "inner"), "outer"),
			code:     ErrCodeWrite,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInternal,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCoercion, "x")); got != ErrCodeCoercion {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeCoercion)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeWrite, "disk full")); got != "disk full" {
		t.Errorf("UserMessage() = %q, want %q", got, "disk full")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}

func TestValidateStyleName(t *testing.T) {
	for _, name := range []string{"flow", "tagged", "prefixed"} {
		if err := ValidateStyleName(name); err != nil {
			t.Errorf("ValidateStyleName(%q) = %v, want nil", name, err)
		}
	}

	if err := ValidateStyleName("yaml"); !Is(err, ErrCodeInvalidStyle) {
		t.Errorf("ValidateStyleName(yaml) = %v, want INVALID_STYLE", err)
	}
	if err := ValidateStyleName(""); !Is(err, ErrCodeInvalidStyle) {
		t.Errorf("ValidateStyleName(\"\") = %v, want INVALID_STYLE", err)
	}
}

func TestValidateOutputDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative", "export/materials", false},
		{"valid absolute", "/tmp/export", false},
		{"empty", "", true},
		{"traversal", "export/../../etc", true},
		{"control char", "export\x00dir", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
