package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "nil ports", ports: nil, wantErr: ErrMissingAssistant},
		{name: "missing assistant", ports: &Ports{}, wantErr: ErrMissingAssistant},
		{name: "assistant only", ports: &Ports{Assistant: &mockAssistant{}}},
		{name: "assistant and index", ports: &Ports{Assistant: &mockAssistant{}, Index: &mockIndex{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
