package voxelgameslib_test

import (
	"net/http/httptest"
	"testing"

	"github.com/voxelgameslib/voxelgameslib"
)

func scrape(t *testing.T, lib *voxelgameslib.Lib) string {
	t.Helper()
	rec := httptest.NewRecorder()
	lib.Metrics().Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
