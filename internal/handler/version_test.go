package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleVersion(t *testing.T) {
	t.Setenv("VERSION", "1.4.0")

	w := httptest.NewRecorder()
	HandleVersion("spinvault", "test")(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var info VersionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "spinvault", info.Service)
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
