package apitest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/internal/apitest"
)

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginAndRotation(t *testing.T) {
	api := apitest.New(t)

	resp := post(t, api.URL+"/api/auth/login", map[string]string{
		"email": apitest.VendorEmail, "password": apitest.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var creds credentials.Credentials
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&creds))
	require.True(t, creds.Complete())
	require.Equal(t, credentials.RoleVendor, creds.User.Role)

	t.Run("refresh token is single use", func(t *testing.T) {
		first := post(t, api.URL+"/api/tokens/refresh", map[string]string{"refreshToken": creds.RefreshToken})
		require.Equal(t, http.StatusOK, first.StatusCode)

		second := post(t, api.URL+"/api/tokens/refresh", map[string]string{"refreshToken": creds.RefreshToken})
		require.Equal(t, http.StatusUnauthorized, second.StatusCode)
		require.Equal(t, 2, api.RefreshCalls())
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := post(t, api.URL+"/api/auth/login", map[string]string{
			"email": apitest.VendorEmail, "password": "nope",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestScopedResourcesRequireRole(t *testing.T) {
	api := apitest.New(t)
	admin := api.Issue(apitest.AdminEmail)
	vendor := api.Issue(apitest.VendorEmail)

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, api.URL+"/api/admin/categories", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, get(admin.AccessToken))
	require.Equal(t, http.StatusForbidden, get(vendor.AccessToken))
	require.Equal(t, http.StatusUnauthorized, get(""))

	api.ExpireAccessTokens()
	require.Equal(t, http.StatusUnauthorized, get(admin.AccessToken))
}
