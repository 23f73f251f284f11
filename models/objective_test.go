package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialStep(t *testing.T) {
	assert.Equal(t, 1, InitialStep(true))
	assert.Equal(t, 11, InitialStep(false))
}

func TestModuleForStep(t *testing.T) {
	for step := 1; step <= 5; step++ {
		assert.Equal(t, "brainstorm", ModuleForStep(step), "step %d", step)
	}
	for step := 6; step <= 10; step++ {
		assert.Equal(t, "choose", ModuleForStep(step), "step %d", step)
	}
	for step := 11; step <= 17; step++ {
		assert.Equal(t, "objectives", ModuleForStep(step), "step %d", step)
	}
}
