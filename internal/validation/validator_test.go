// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package validation

import (
	"strings"
	"testing"
)

type ingestRequest struct {
	UserID int64   `validate:"required,gt=0"`
	Text   string  `validate:"required,min=1,max=10000"`
	Source string  `validate:"required,sourcetag"`
	Weight float64 `validate:"gte=0,lte=1"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       ingestRequest
		wantErr   bool
		wantField string
	}{
		{
			name: "valid request",
			req:  ingestRequest{UserID: 1, Text: "hello", Source: "social", Weight: 0.5},
		},
		{
			name:      "missing user",
			req:       ingestRequest{Text: "hello", Source: "social"},
			wantErr:   true,
			wantField: "UserID",
		},
		{
			name:      "empty text",
			req:       ingestRequest{UserID: 1, Source: "scholar"},
			wantErr:   true,
			wantField: "Text",
		},
		{
			name:      "unknown source tag",
			req:       ingestRequest{UserID: 1, Text: "hello", Source: "wiki"},
			wantErr:   true,
			wantField: "Source",
		},
		{
			name:      "weight above one",
			req:       ingestRequest{UserID: 1, Text: "hello", Source: "both", Weight: 1.5},
			wantErr:   true,
			wantField: "Weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			found := false
			for _, fe := range err.Errors() {
				if fe.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("error fields = %v, want %s", err.Error(), tt.wantField)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	err := ValidateStruct(&ingestRequest{})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "UserID") {
		t.Errorf("Message = %q, want mention of UserID", apiErr.Message)
	}
	if apiErr.Details == nil {
		t.Error("Details = nil, want field breakdown")
	}
}

func TestSourceTagAcceptsAllKnownValues(t *testing.T) {
	for _, src := range []string{"social", "scholar", "manual", "both"} {
		req := ingestRequest{UserID: 1, Text: "x", Source: src}
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("source %q rejected: %v", src, err)
		}
	}
}
