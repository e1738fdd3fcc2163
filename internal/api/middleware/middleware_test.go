package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(secret []byte, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RequireAuth(secret), RequireRole(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.MustGet("user_id"))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("test-secret")
	editor, _ := IssueToken(secret, "dj-1", RoleEditor, time.Hour)
	viewer, _ := IssueToken(secret, "dj-2", "viewer", time.Hour)
	admin, _ := IssueToken(secret, "root", RoleAdmin, 0)
	forged, _ := IssueToken([]byte("other"), "dj-1", RoleEditor, time.Hour)
	expired, _ := IssueToken(secret, "dj-1", RoleEditor, -time.Minute)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"editor header", "Bearer " + editor, "", http.StatusOK},
		{"editor query", "", editor, http.StatusOK},
		{"admin overrides", "Bearer " + admin, "", http.StatusOK},
		{"wrong role", "Bearer " + viewer, "", http.StatusForbidden},
		{"wrong secret", "Bearer " + forged, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
	}

	r := newRouter(secret, RoleEditor)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/private"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d; want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestIssueTokenNeedsSecret(t *testing.T) {
	if _, err := IssueToken(nil, "x", RoleEditor, 0); err == nil {
		t.Error("IssueToken with empty secret succeeded")
	}
}

func TestClientGone(t *testing.T) {
	pipe := &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}
	reset := &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}

	if !clientGone(pipe) || !clientGone(reset) {
		t.Error("broken pipe / reset not recognised")
	}
	if clientGone(fmt.Errorf("template: boom")) {
		t.Error("ordinary error treated as a disconnect")
	}
}
