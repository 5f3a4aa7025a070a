package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(method, path string, edit func(r *http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/auth/login"}, EnforceSameOrigin: true}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/orders", ok)
	e.POST("/orders", ok)
	e.POST("/auth/login", ok)

	req := httptest.NewRequest(method, path, nil)
	if edit != nil {
		edit(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec := serve(http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
}

func TestUnsafeMethod(t *testing.T) {
	cases := []struct {
		name string
		edit func(r *http.Request)
		want int
	}{
		{"no token", func(r *http.Request) {
			r.Header.Set("Origin", "http://example.com")
		}, http.StatusForbidden},
		{"cross origin", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
			r.Header.Set("X-CSRF-Token", "abc")
			r.Header.Set("Origin", "http://evil.test")
		}, http.StatusForbidden},
		{"mismatch", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
			r.Header.Set("X-CSRF-Token", "abd")
			r.Header.Set("Origin", "http://example.com")
		}, http.StatusForbidden},
		{"matching", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
			r.Header.Set("X-CSRF-Token", "abc")
			r.Header.Set("Origin", "http://example.com")
		}, http.StatusOK},
		{"bearer", func(r *http.Request) {
			r.Header.Set(echo.HeaderAuthorization, "Bearer t")
		}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serve(http.MethodPost, "/orders", tc.edit).Code)
		})
	}
}

func TestSkipPaths(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/auth/login", nil).Code)
}
