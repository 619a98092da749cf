package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/dairyshell/domain"
	testconfig "github.com/you/dairyshell/internal/tests/config"
)

func TestShellFlow_SQLite(t *testing.T) {
	market := NewMarketplace(t)
	cfg := testconfig.LoadTestConfig(t, map[string]string{
		"DAIRY_API_BASE_URL": market.URL + "/api/v1",
	})
	shell := StartShell(t, cfg)

	t.Run("fresh install lands on guest home", func(t *testing.T) {
		graph, active := shell.Route(t)
		assert.Equal(t, "guest", graph)
		assert.Equal(t, domain.ScreenHome, active)
	})

	t.Run("wrong password is rejected with a toast", func(t *testing.T) {
		code, body := shell.Do(t, http.MethodPost, "/session/login", map[string]string{
			"identifier": "bola", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Incorrect password", body["error"])

		_, body = shell.Do(t, http.MethodGet, "/notifications", nil)
		toasts := body["data"].([]interface{})
		require.NotEmpty(t, toasts)
		assert.Equal(t, "Login failed", toasts[len(toasts)-1].(map[string]interface{})["title"])
	})

	t.Run("buyer login mounts buyer graph", func(t *testing.T) {
		code, _ := shell.Do(t, http.MethodPost, "/session/login", map[string]string{
			"identifier": "bola", "password": "password123",
		})
		require.Equal(t, http.StatusOK, code)

		graph, active := shell.Route(t)
		assert.Equal(t, "buyer", graph)
		assert.Equal(t, domain.ScreenBuyerDashboard, active)

		code, _ = shell.Do(t, http.MethodPost, "/route/navigate", map[string]string{"screen": domain.ScreenCart})
		assert.Equal(t, http.StatusOK, code)
		code, _ = shell.Do(t, http.MethodPost, "/route/navigate", map[string]string{"screen": domain.ScreenSales})
		assert.Equal(t, http.StatusForbidden, code)

		code, body := shell.Do(t, http.MethodGet, "/session/token", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "opaque", body["data"].(map[string]interface{})["format"])
	})

	t.Run("logout returns to guest and drops the bearer", func(t *testing.T) {
		code, _ := shell.Do(t, http.MethodPost, "/session/logout", nil)
		require.Equal(t, http.StatusOK, code)

		graph, active := shell.Route(t)
		assert.Equal(t, "guest", graph)
		assert.Equal(t, domain.ScreenHome, active)

		code, _ = shell.Do(t, http.MethodPost, "/session/verify-email", map[string]string{
			"email": "bola@example.com", "code": "123456",
		})
		assert.Equal(t, http.StatusOK, code)
		headers := market.AuthHeaders()
		assert.Empty(t, headers[len(headers)-1])
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		resp, err := http.Get(shell.BaseURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(raw), "dairyshell_"), "expected dairyshell metrics")
	})
}

func TestShellFlow_RedisRestoresSession(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	market := NewMarketplace(t)
	mr.Set("e2e:@auth", `{"_id":"s1","userName":"ada","userField":"seller"}`)
	mr.Set("e2e:token", "tok-ada")

	cfg := testconfig.LoadTestConfig(t, map[string]string{
		"DAIRY_API_BASE_URL":   market.URL + "/api/v1",
		"DAIRY_STORAGE_DRIVER": "redis",
		"DAIRY_REDIS_ADDR":     mr.Addr(),
		"DAIRY_KEY_PREFIX":     "e2e:",
	})
	shell := StartShell(t, cfg)

	graph, active := shell.Route(t)
	assert.Equal(t, "seller", graph)
	assert.Equal(t, domain.ScreenSellerDashboard, active)

	code, _ := shell.Do(t, http.MethodPost, "/session/logout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, mr.Exists("e2e:@auth"))
	assert.False(t, mr.Exists("e2e:token"))
}
