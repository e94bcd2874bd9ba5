package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/incr/internal/core/domain"
)

func TestInputChanges(t *testing.T) {
	change := domain.FileChange{Title: "Input", Property: "sources", Path: "src/a.go", Type: domain.Modified}
	properties := []string{"sources", "assets"}
	inputs := domain.NewInputChanges(true, properties, map[string][]domain.FileChange{"sources": {change}})

	properties[0] = "mutated"

	assert.True(t, inputs.IsIncremental())
	assert.Equal(t, []string{"sources", "assets"}, inputs.Properties())
	assert.Equal(t, []domain.FileChange{change}, inputs.FileChanges("sources"))
	assert.Empty(t, inputs.FileChanges("assets"))
	assert.Equal(t, "Input property 'sources' file src/a.go has changed.", change.Message())
}

func TestInputChanges_ZeroValue(t *testing.T) {
	var inputs domain.InputChanges

	assert.False(t, inputs.IsIncremental())
	assert.Empty(t, inputs.Properties())
	assert.Empty(t, inputs.FileChanges("sources"))
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "added", domain.Added.String())
	assert.Equal(t, "modified", domain.Modified.String())
	assert.Equal(t, "removed", domain.Removed.String())
	assert.Equal(t, "ChangeType(7)", domain.ChangeType(7).String())
}
