package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parsdesk/dana/pkg/types"
)

func TestStatusFor(t *testing.T) {
	// "No information" is a valid answer about the corpus, not a failure.
	assert.Equal(t, http.StatusOK, statusFor(types.ResultErrorNone))
	assert.Equal(t, http.StatusOK, statusFor(types.ResultErrorNoInformation))

	assert.Equal(t, http.StatusServiceUnavailable, statusFor(types.ResultErrorProviderUnreachable))
	assert.Equal(t, http.StatusBadGateway, statusFor(types.ResultErrorGenerationFailed))
	assert.Equal(t, http.StatusRequestTimeout, statusFor(types.ResultErrorCancelled))
}
