package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/dairyshell/internal/app"
	"github.com/you/dairyshell/internal/config"
)

// Marketplace is a fake remote API that records the bearer header it sees
type Marketplace struct {
	*httptest.Server

	mu          sync.Mutex
	authHeaders []string
}

// NewMarketplace starts the fake marketplace API
func NewMarketplace(t *testing.T) *Marketplace {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &Marketplace{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		m.mu.Lock()
		m.authHeaders = append(m.authHeaders, c.GetHeader("Authorization"))
		m.mu.Unlock()
		c.Next()
	})

	v1 := r.Group("/api/v1")
	v1.POST("/users/login", func(c *gin.Context) {
		var req struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Password != "password123" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Incorrect password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    gin.H{"_id": "u-" + req.Identifier, "userName": req.Identifier, "userField": "buyer"},
			"token":   "tok-" + req.Identifier,
		})
	})
	v1.POST("/users/register", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"message": "Verification code sent! Check your email."})
	})
	v1.POST("/users/verify-email", func(c *gin.Context) {
		var req struct {
			Code string `json:"code"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Code != "123456" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Email successfully verified!"})
	})

	m.Server = httptest.NewServer(r)
	t.Cleanup(m.Server.Close)
	return m
}

// AuthHeaders returns every Authorization header received so far
func (m *Marketplace) AuthHeaders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.authHeaders...)
}

// Shell runs app.Run in the background for one test
type Shell struct {
	BaseURL string
	client  *http.Client
}

// StartShell runs the shell until the test ends and waits for /health
func StartShell(t *testing.T, cfg *config.Config) *Shell {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, cfg) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("shell exited with error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("shell did not shut down")
		}
	})

	s := &Shell{BaseURL: "http://" + cfg.ListenAddr, client: &http.Client{Timeout: 5 * time.Second}}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := s.client.Get(s.BaseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return s
			}
		}
		select {
		case err := <-done:
			t.Fatalf("shell exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Fatal("Timeout waiting for the shell to become healthy")
	return nil
}

// Do sends a JSON request and decodes the JSON reply
func (s *Shell) Do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.BaseURL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// Route returns the mounted graph and active screen
func (s *Shell) Route(t *testing.T) (string, string) {
	t.Helper()

	code, body := s.Do(t, http.MethodGet, "/route", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /route: status %d", code)
	}
	data := body["data"].(map[string]interface{})
	return data["graph"].(string), data["active"].(string)
}
