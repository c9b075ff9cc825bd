package errors

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnretriable(t *testing.T) {
	err := Unretriable(fmt.Errorf("bar"))
	require.True(t, IsUnretriable(err))
	require.EqualError(t, err, "bar")
}

func TestIsUnretriableFalseForPlainError(t *testing.T) {
	require.False(t, IsUnretriable(fmt.Errorf("plain")))
}

func TestWriteHTTPInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	apiErr := WriteHTTPInternalServerError(rec, "spawn failed", fmt.Errorf("exit status 1"))

	require.Equal(t, 500, rec.Code)
	require.Equal(t, 500, apiErr.Status)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "spawn failed", body["error"])
	require.Equal(t, "exit status 1", body["error_detail"])
}
