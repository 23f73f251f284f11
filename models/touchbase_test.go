package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTouchbase_EditableAt(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tb := Touchbase{Model: gorm.Model{CreatedAt: created}}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"immediately after creation", created, true},
		{"one minute before the window closes", created.Add(23*time.Hour + 59*time.Minute), true},
		{"exactly at 24h", created.Add(24 * time.Hour), false},
		{"one second past the window", created.Add(24*time.Hour + time.Second), false},
		{"days later", created.Add(72 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tb.EditableAt(tt.at))
		})
	}
}
