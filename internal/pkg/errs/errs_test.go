package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"present-delivery-service/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("WithCause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := errs.RoutingError("here.Compose", cause)

		assert.Equal(t, "here.Compose: routing failed: connection refused", err.Error())
		assert.ErrorIs(t, err, errs.ErrRouting)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, errs.ErrGeocode)
	})

	t.Run("WithoutCause", func(t *testing.T) {
		err := errs.StoreError("LoadFacility", nil)

		assert.Equal(t, "LoadFacility: store operation failed", err.Error())
		assert.ErrorIs(t, err, errs.ErrStore)
	})

	t.Run("SurvivesWrapping", func(t *testing.T) {
		err := fmt.Errorf("plan: %w", errs.ValidationError("reorder", errors.New("unknown id 9")))

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, errs.ErrValidation, errs.KindOf(err))

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "reorder", e.Op)
	})

	t.Run("KindOfUnclassified", func(t *testing.T) {
		assert.NoError(t, errs.KindOf(errors.New("plain")))
	})
}
