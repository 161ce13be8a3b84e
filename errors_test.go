package docql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorAndIsCode(t *testing.T) {
	err := newError(ErrDomain, "docql: bad value %d", 42)
	assert.Equal(t, "docql: bad value 42", err.Error())
	assert.True(t, IsCode(err, ErrDomain))
	assert.False(t, IsCode(err, ErrBadShape))
}

func TestIsCodeNonDocqlError(t *testing.T) {
	assert.False(t, IsCode(assertErr{}, ErrDomain))
}

type assertErr struct{}

func (assertErr) Error() string { return "not a docql error" }
