package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("AllUp", func(t *testing.T) {
		resp, err := checkHealth(context.Background(), []pinger{{name: "database", fn: up}, {name: "redis", fn: up}})
		require.NoError(t, err)
		assert.Equal(t, healthResponse{Status: "ok", Services: map[string]string{"database": "up", "redis": "up"}}, resp)
	})

	t.Run("OneDown", func(t *testing.T) {
		resp, err := checkHealth(context.Background(), []pinger{{name: "database", fn: up}, {name: "redis", fn: down}})
		assert.Nil(t, resp)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode())
	})
}
