package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"invalid product export", fmt.Errorf("parse product export: %w", source.ErrInvalidJSON), "JSON001"},
		{"invalid image export", fmt.Errorf("parse image export: %w", source.ErrInvalidJSON), "JSON002"},
		{"empty product export", fmt.Errorf("parse product export: %w", source.ErrEmptyDocument), "JSON003"},
		{"empty image export", fmt.Errorf("parse image export: %w", source.ErrEmptyDocument), "JSON004"},
		{"file too large", errors.New("file too large: 40MB"), "FILE001"},
		{"missing file", errors.New("no file provided: images"), "FILE002"},
		{"unknown layout", fmt.Errorf("convert: %w", schema.ErrUnknownLayout), "CNV001"},
		{"busy", ErrTooManyConversions, "CNV002"},
		{"expired", ErrConversionNotFound, "CNV003"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrTooManyConversions)
	want := "The converter is busy with other menus (Code: CNV002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(ErrConversionNotFound) {
		t.Error("IsUserFacing(ErrConversionNotFound) = false")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true")
	}
}
