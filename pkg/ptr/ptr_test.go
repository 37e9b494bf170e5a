package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
)

func TestValue(t *testing.T) {
	assert.Equal(t, "abc", ptr.Value(ptr.New("abc")))
	assert.Equal(t, "", ptr.Value[string](nil))
	assert.False(t, ptr.Value[bool](nil))
	assert.Equal(t, 7, ptr.Value(ptr.New(7)))
}
