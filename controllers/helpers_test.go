package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyFieldSet(t *testing.T) {
	fields, err := bodyFieldSet([]byte(`{"status":"complete","title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"status": true, "title": true}, fields)

	_, err = bodyFieldSet([]byte(`not json`))
	assert.Error(t, err)
}

func TestOnlyStatusField(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"status alone", `{"status":"complete"}`, true},
		{"status plus title is rejected wholesale", `{"status":"done","title":"x"}`, false},
		{"title alone", `{"title":"x"}`, false},
		{"empty body", `{}`, false},
		{"status with null extra", `{"status":"todo","due_date":null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := bodyFieldSet([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, onlyStatusField(fields))
		})
	}
}
