package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// 1. Callback with Valid Credential
	form := url.Values{}
	form.Add("credential", "valid_token")

	// Configure client to NOT follow redirects to check cookies and location
	app.Client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := app.Client.PostForm(app.Server.URL+"/oauth/callback", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	location, err := resp.Location()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/redirect", location.String())

	var accessToken, refreshToken string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "access_token" {
			accessToken = cookie.Value
		}
		if cookie.Name == "refresh_token" {
			refreshToken = cookie.Value
		}
	}

	assert.NotEmpty(t, accessToken, "access_token cookie should be set")
	assert.NotEmpty(t, refreshToken, "refresh_token cookie should be set")

	// 2. The issued access token authenticates /api calls
	req, err := http.NewRequest("GET", app.Server.URL+"/api/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})

	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&user)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "test@example.com", user["email"])

	// 3. Refresh Token
	// Wait a bit so the new token carries a different iat
	time.Sleep(1200 * time.Millisecond)

	req, err = http.NewRequest("POST", app.Server.URL+"/oauth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})

	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	newAccessToken := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "access_token" {
			newAccessToken = cookie.Value
		}
	}
	assert.NotEmpty(t, newAccessToken, "new access_token should be returned")
	assert.NotEqual(t, accessToken, newAccessToken, "access token should be different (rotated/new)")
}

func TestAuthFlow_Invalid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// Invalid Credential
	form := url.Values{}
	form.Add("credential", "bad_token")

	resp, err := app.Client.PostForm(app.Server.URL+"/oauth/callback", form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Invalid Refresh Token
	req, err := http.NewRequest("POST", app.Server.URL+"/oauth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "garbage"})

	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
