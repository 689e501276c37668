package artex_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/artex"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := artex.Errorf(artex.ENOTFOUND, "rule %q not found", "vg")

	assert.Equal(t, artex.ENOTFOUND, artex.ErrorCode(err))
	assert.Equal(t, "rule \"vg\" not found", artex.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading rules: %w", artex.Errorf(artex.EINVALID, "bad rule"))

	assert.Equal(t, artex.EINVALID, artex.ErrorCode(err))
	assert.Equal(t, "bad rule", artex.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, artex.EINTERNAL, artex.ErrorCode(err))
	assert.Equal(t, "Internal error.", artex.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, artex.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, artex.ErrorMessage(nil))
}
