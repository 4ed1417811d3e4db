package entity

import (
	"encoding/json"
	"testing"
)

func TestUserIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    UserID
		wantErr bool
	}{
		{
			name:  "uuid string",
			input: `"9f6f2c1a-6a6e-4a52-9a31-2b6d94cf5a10"`,
			want:  UserID("9f6f2c1a-6a6e-4a52-9a31-2b6d94cf5a10"),
		},
		{
			name:  "bare integer",
			input: `1`,
			want:  UserID("1"),
		},
		{
			name:    "boolean",
			input:   `true`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got UserID
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Unmarshal() = %q, want %q", got, tt.want)
			}
		})
	}
}
