package collections_test

import (
	"strings"
	"testing"

	"github.com/alkime/scribe/pkg/collections"
	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	assert.Equal(t, []int{1, 4, 9}, collections.Apply([]int{1, 2, 3}, func(i int) int { return i * i }))
	assert.Equal(t, []int{}, collections.Apply([]string{}, func(s string) int { return len(s) }))
}

func TestFilter(t *testing.T) {
	words := []string{"cough", "", "fever", "  "}
	got := collections.Filter(words, func(s string) bool { return strings.TrimSpace(s) != "" })
	assert.Equal(t, []string{"cough", "fever"}, got)

	assert.Nil(t, collections.Filter([]int{1, 3}, func(i int) bool { return i%2 == 0 }))
}
