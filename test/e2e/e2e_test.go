//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase     string // http://localhost:8080
	HealthBase  string // http://localhost:8081
	MailhogBase string // http://localhost:8025
	WaitEmail   time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:     getenv("E2E_API_BASE", "http://localhost:8080"),
		HealthBase:  getenv("E2E_HEALTH_BASE", "http://localhost:8081"),
		MailhogBase: getenv("E2E_MAILHOG_BASE", "http://localhost:8025"),
		WaitEmail:   mustParseDur(getenv("E2E_WAIT_EMAIL", "30s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResp struct {
	User struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
	Tokens tokenPair `json:"tokens"`
}

type postResp struct {
	ID            int64  `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	LikesCount    int64  `json:"likes_count"`
	CommentsCount int64  `json:"comments_count"`
}

type mailhogMessages struct {
	Total    int          `json:"total"`
	Messages []mailhogMsg `json:"items"`
}
type mailhogMsg struct {
	Content struct {
		Headers map[string][]string `json:"Headers"`
		Body    string              `json:"Body"`
	} `json:"Content"`
}

func doJSON(t *testing.T, method, url string, in any, out any, bearer string, want int) {
	t.Helper()
	var body io.Reader
	if in != nil {
		b, _ := json.Marshal(in)
		body = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, url, body)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s => %d (want %d): %s", method, url, resp.StatusCode, want, string(raw))
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), "body=%s", string(raw))
	}
}

func waitHealthy(t *testing.T, c cfg) {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(c.HealthBase + "/healthz")
		if err == nil {
			ok := resp.StatusCode == 200
			resp.Body.Close()
			if ok {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("api not healthy in time")
}

var tokenRe = regexp.MustCompile(`token=3D([A-Za-z0-9-]+)|token=([A-Za-z0-9-]+)`)

func waitVerificationToken(t *testing.T, c cfg, email string) string {
	t.Helper()
	deadline := time.Now().Add(c.WaitEmail)
	for time.Now().Before(deadline) {
		var out mailhogMessages
		resp, err := http.Get(c.MailhogBase + "/api/v2/messages")
		if err == nil {
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			_ = json.Unmarshal(raw, &out)
		}
		for _, m := range out.Messages {
			if !strings.Contains(m.Content.Body, email) && !containsHeader(m.Content.Headers, "To", email) {
				continue
			}
			if g := tokenRe.FindStringSubmatch(m.Content.Body); g != nil {
				if g[1] != "" {
					return g[1]
				}
				return g[2]
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("verification email didn't arrive in time")
	return ""
}

func containsHeader(h map[string][]string, key, val string) bool {
	for _, v := range h[key] {
		if strings.Contains(v, val) {
			return true
		}
	}
	return false
}

func Test_BlogFlow_RegisterToComment(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c)

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("e2e_%d@inkwell.dev", suffix)
	username := fmt.Sprintf("e2e%d", suffix%1_000_000_000)
	pass := "sup3rsecret"

	var ar authResp
	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": pass,
	}, &ar, "", 201)
	require.NotEmpty(t, ar.Tokens.AccessToken)
	require.NotEmpty(t, ar.Tokens.RefreshToken)
	t.Logf("registered as %s (id=%d)", ar.User.Email, ar.User.ID)

	token := waitVerificationToken(t, c, email)
	doJSON(t, http.MethodGet, c.APIBase+"/api/v1/auth/verify?token="+url.QueryEscape(token), nil, nil, "", 200)
	t.Log("email verified")

	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": pass,
	}, &ar, "", 200)
	access := ar.Tokens.AccessToken

	var p postResp
	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/posts", map[string]any{
		"title":   fmt.Sprintf("E2E post %d", suffix),
		"content": "A post created by the end to end suite. It should be visible once published.",
		"status":  "published",
	}, &p, access, 201)
	require.NotEmpty(t, p.Slug)
	require.Equal(t, "published", p.Status)
	t.Logf("post created (id=%d slug=%s)", p.ID, p.Slug)

	var got postResp
	doJSON(t, http.MethodGet, c.APIBase+"/api/v1/posts/"+p.Slug, nil, &got, "", 200)
	require.Equal(t, p.ID, got.ID)

	var like struct {
		Liked bool `json:"liked"`
	}
	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/posts/"+strconv.FormatInt(p.ID, 10)+"/like", nil, &like, access, 200)
	require.True(t, like.Liked)

	var cm struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}
	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/posts/"+strconv.FormatInt(p.ID, 10)+"/comments", map[string]string{
		"content": "first!",
	}, &cm, access, 201)
	require.NotZero(t, cm.ID)

	var comments struct {
		Comments []struct {
			ID int64 `json:"id"`
		} `json:"comments"`
	}
	doJSON(t, http.MethodGet, c.APIBase+"/api/v1/posts/"+p.Slug+"/comments", nil, &comments, "", 200)
	require.Len(t, comments.Comments, 1)

	doJSON(t, http.MethodGet, c.APIBase+"/api/v1/posts/"+p.Slug, nil, &got, "", 200)
	require.EqualValues(t, 1, got.LikesCount)

	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/auth/logout", map[string]string{
		"refresh_token": ar.Tokens.RefreshToken,
	}, nil, access, 200)

	// both tokens are dead after logout
	doJSON(t, http.MethodGet, c.APIBase+"/api/v1/auth/me", nil, nil, access, 401)
	doJSON(t, http.MethodPost, c.APIBase+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": ar.Tokens.RefreshToken,
	}, nil, "", 401)
}
