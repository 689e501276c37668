package rules_test

import (
	"testing"

	"github.com/fwojciec/artex/rules"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	t.Run("day month year in several languages", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "2026-10-14", rules.NormalizeDate("14. oktober 2026"))
		assert.Equal(t, "2026-03-03", rules.NormalizeDate("3 mars 2026"))
		assert.Equal(t, "2026-12-24", rules.NormalizeDate("24. Dezember 2026"))
		assert.Equal(t, "2026-06-01", rules.NormalizeDate("1er juin 2026"))
		assert.Equal(t, "2026-05-03", rules.NormalizeDate("3 de mayo de 2026"))
		assert.Equal(t, "2026-08-15", rules.NormalizeDate("15 août 2026"))
		assert.Equal(t, "2026-10-14", rules.NormalizeDate("14 Oct 2026"))
	})

	t.Run("month day year", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "2026-10-14", rules.NormalizeDate("October 14, 2026"))
		assert.Equal(t, "2026-01-02", rules.NormalizeDate("Published Jan. 2nd 2026"))
	})

	t.Run("unrecognized input passes through unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "2026-10-14T08:00:00Z", rules.NormalizeDate("2026-10-14T08:00:00Z"))
		assert.Equal(t, "yesterday", rules.NormalizeDate("yesterday"))
		assert.Equal(t, "40 oktober 2026", rules.NormalizeDate("40 oktober 2026"))
		assert.Equal(t, "14 smarch 2026", rules.NormalizeDate("14 smarch 2026"))
	})

	t.Run("impossible calendar dates pass through unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "31 February 2026", rules.NormalizeDate("31 February 2026"))
		assert.Equal(t, "31. april 2026", rules.NormalizeDate("31. april 2026"))
		assert.Equal(t, "2028-02-29", rules.NormalizeDate("29 February 2028"))
		assert.Equal(t, "29 February 2026", rules.NormalizeDate("29 February 2026"))
	})
}
