package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestRequestValidation(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{
			name:    "valid login",
			req:     &LoginRequest{Email: "a@b.com", Password: "password1"},
			wantErr: false,
		},
		{
			name:    "login rejects malformed email",
			req:     &LoginRequest{Email: "not-an-email", Password: "password1"},
			wantErr: true,
		},
		{
			name:    "login requires password",
			req:     &LoginRequest{Email: "a@b.com"},
			wantErr: true,
		},
		{
			name:    "valid registration",
			req:     &RegisterRequest{Username: "a", Email: "a@b.com", Password: "password1", ConfirmPassword: "password1"},
			wantErr: false,
		},
		{
			name:    "registration rejects mismatched confirmation",
			req:     &RegisterRequest{Username: "a", Email: "a@b.com", Password: "password1", ConfirmPassword: "password2"},
			wantErr: true,
		},
		{
			name:    "note requires title",
			req:     &CreateNoteRequest{Content: "body only"},
			wantErr: true,
		},
		{
			name:    "partial note update may omit everything",
			req:     &UpdateNoteRequest{},
			wantErr: false,
		},
		{
			name:    "valid experiment",
			req:     &CreateExperimentRequest{Title: "T", Hypothesis: "H", Methods: "M"},
			wantErr: false,
		},
		{
			name: "experiment validates inline steps",
			req: &CreateExperimentRequest{
				Title:      "T",
				Hypothesis: "H",
				Methods:    "M",
				Steps:      []CreateStepInline{{Observation: "no description"}},
			},
			wantErr: true,
		},
		{
			name:    "experiment update rejects unknown status",
			req:     &UpdateExperimentRequest{Status: ptr("archived")},
			wantErr: true,
		},
		{
			name:    "experiment update accepts known status",
			req:     &UpdateExperimentRequest{Status: ptr("in_progress")},
			wantErr: false,
		},
		{
			name:    "step requires description",
			req:     &CreateStepRequest{},
			wantErr: true,
		},
		{
			name:    "attachment requires name and type",
			req:     &CreateAttachmentRequest{FileName: "gel.png"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func ptr(s string) *string { return &s }
