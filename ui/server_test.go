package ui

import (
	"net/http"
	"testing"

	"parceldash/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants_ServePagesAndAPI(t *testing.T) {
	for _, variant := range []string{"chi", "gin"} {
		t.Run(variant, func(t *testing.T) {
			h, err := NewHandler(variant, Options{
				Session: newLoadedSession(t),
				Static:  testRoot(),
				Logger:  internal.NewNopLogger(),
			})
			require.NoError(t, err)

			rec := serve(t, h, http.MethodGet, "/")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "<h1>home</h1>", rec.Body.String())

			rec = serve(t, h, http.MethodGet, "/enhanced")
			assert.Equal(t, "<h1>enhanced</h1>", rec.Body.String())

			rec = serve(t, h, http.MethodGet, "/nope.css")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "<h1>custom missing</h1>", rec.Body.String())

			rec, body := call(t, h, http.MethodGet, "/api/dashboard", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "overview", body["activeTab"])

			rec, _ = call(t, h, http.MethodPost, "/api/tabs/reports", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestGinVariant_CORS(t *testing.T) {
	h := NewServer(Options{Session: newLoadedSession(t), Static: testRoot(), Logger: internal.NewNopLogger(), CORS: true}).Handler()

	rec := serve(t, h, http.MethodGet, "/data.json")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, h, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, h, http.MethodOptions, "/api/filters")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	plain := NewApp(Options{Session: newLoadedSession(t), Static: testRoot(), Logger: internal.NewNopLogger()}).Handler()
	rec = serve(t, plain, http.MethodGet, "/data.json")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewHandler_UnknownVariant(t *testing.T) {
	_, err := NewHandler("nginx", Options{})
	assert.Error(t, err)
}
