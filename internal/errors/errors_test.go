package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Run("BuildWithAllFields", func(t *testing.T) {
		err := Newf("report %d not found", 42).
			Component("datastore").
			Category(CategoryNotFound).
			Priority(PriorityLow).
			Context("report_id", 42).
			Build()

		require.Error(t, err)
		assert.Equal(t, "report 42 not found", err.Error())
		assert.Equal(t, "datastore", err.Component)
		assert.Equal(t, CategoryNotFound, err.Category)
		assert.Equal(t, PriorityLow, err.Priority)
		assert.Equal(t, 42, err.GetContext()["report_id"])
		assert.NotZero(t, err.Timestamp)
	})

	t.Run("Defaults", func(t *testing.T) {
		err := New(stderrors.New("boom")).Build()

		assert.Equal(t, ComponentUnknown, err.Component)
		assert.Equal(t, CategoryGeneric, err.Category)
		assert.Empty(t, err.Priority)
	})

	t.Run("InvalidPriorityFallsBackToMedium", func(t *testing.T) {
		err := New(stderrors.New("boom")).Priority("urgent").Build()
		assert.Equal(t, PriorityMedium, err.Priority)
	})
}

func TestUnwrapAndIs(t *testing.T) {
	base := stderrors.New("connection refused")
	wrapped := New(base).Category(CategoryDatabase).Build()

	assert.True(t, Is(wrapped, base))

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryDatabase, ee.Category)
}

func TestCategoryMatching(t *testing.T) {
	a := Newf("a").Category(CategoryDatabase).Build()
	b := Newf("b").Category(CategoryDatabase).Build()
	c := Newf("c").Category(CategoryValidation).Build()

	assert.True(t, stderrors.Is(a, b), "same category should match")
	assert.False(t, stderrors.Is(a, c), "different category should not match")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Newf("db down").Category(CategoryDatabase).Build()))
	assert.True(t, IsTransient(Newf("deadline").Category(CategoryTimeout).Build()))
	assert.False(t, IsTransient(Newf("bad latitude").Category(CategoryValidation).Build()))
	assert.False(t, IsTransient(stderrors.New("plain error")))
}

func TestContextIsCopied(t *testing.T) {
	err := Newf("x").Context("k", "v").Build()
	m := err.GetContext()
	m["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
