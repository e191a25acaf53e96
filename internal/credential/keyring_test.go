package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"

	"github.com/pawkit/pawkit/internal/model"
)

func TestWrapLookupErr(t *testing.T) {
	err := wrapLookupErr("sync-token", keyring.ErrKeyNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), "sync-token")

	backend := errors.New("backend unavailable")
	err = wrapLookupErr("sync-token", backend)
	assert.ErrorIs(t, err, backend)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}
