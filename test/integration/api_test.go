//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"
)

type authResp struct {
	User struct {
		ID         int64  `json:"id"`
		Email      string `json:"email"`
		IsVerified bool   `json:"is_verified"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"tokens"`
}

func TestAPI_RegisterVerifyLogin(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "api", hostPort(t, cfg.APIBase), 60*time.Second)

	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()

	email := fmt.Sprintf("it-%d@example.com", RandID())
	username := fmt.Sprintf("it%d", RandID())
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"username": username,
		"password": "sup3rsecret",
	})

	var ar authResp
	raw := HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/register", body, "", 201)
	if err := json.Unmarshal(raw, &ar); err != nil {
		t.Fatalf("register response: %v; body=%s", err, string(raw))
	}
	if ar.Tokens.AccessToken == "" || ar.Tokens.RefreshToken == "" {
		t.Fatalf("missing tokens: %s", string(raw))
	}
	if ar.User.IsVerified {
		t.Fatalf("user verified right after register")
	}

	token := VerificationToken(t, db, email)
	if token == "" {
		t.Fatalf("no verification token stored")
	}

	HTTPDoJSON(t, http.MethodGet, cfg.APIBase+"/api/v1/auth/verify?token="+url.QueryEscape(token), nil, "", 200)

	login, _ := json.Marshal(map[string]string{"email": email, "password": "sup3rsecret"})
	raw = HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/login", login, "", 200)
	if err := json.Unmarshal(raw, &ar); err != nil {
		t.Fatalf("login response: %v; body=%s", err, string(raw))
	}
	if !ar.User.IsVerified {
		t.Fatalf("user not verified after verify")
	}

	HTTPDoJSON(t, http.MethodGet, cfg.APIBase+"/api/v1/auth/me", nil, ar.Tokens.AccessToken, 200)
}

func TestAPI_RefreshRotation(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "api", hostPort(t, cfg.APIBase), 60*time.Second)

	email := fmt.Sprintf("rr-%d@example.com", RandID())
	username := fmt.Sprintf("rr%d", RandID())
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"username": username,
		"password": "sup3rsecret",
	})

	var ar authResp
	raw := HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/register", body, "", 201)
	if err := json.Unmarshal(raw, &ar); err != nil {
		t.Fatalf("register response: %v", err)
	}

	refresh, _ := json.Marshal(map[string]string{"refresh_token": ar.Tokens.RefreshToken})
	HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/refresh", refresh, "", 200)

	// the old refresh token is single use
	HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/refresh", refresh, "", 401)
}

func TestAPI_ListKeepsDraftsInChronologicalOrder(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "api", hostPort(t, cfg.APIBase), 60*time.Second)

	id := RandID()
	email := fmt.Sprintf("lo-%d@example.com", id)
	username := fmt.Sprintf("lo%d", id)
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"username": username,
		"password": "sup3rsecret",
	})

	var ar authResp
	raw := HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/auth/register", body, "", 201)
	if err := json.Unmarshal(raw, &ar); err != nil {
		t.Fatalf("register response: %v", err)
	}
	access := ar.Tokens.AccessToken

	createPost := func(title, status string) string {
		b, _ := json.Marshal(map[string]string{
			"title":   title,
			"content": "ordering scenario body",
			"status":  status,
		})
		var p struct {
			Slug string `json:"slug"`
		}
		raw := HTTPDoJSON(t, http.MethodPost, cfg.APIBase+"/api/v1/posts", b, access, 201)
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("create response: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		return p.Slug
	}

	first := createPost(fmt.Sprintf("First %d", id), "published")
	middle := createPost(fmt.Sprintf("Middle draft %d", id), "draft")
	last := createPost(fmt.Sprintf("Last %d", id), "published")

	var list struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	raw = HTTPDoJSON(t, http.MethodGet, cfg.APIBase+"/api/v1/posts?author="+strconv.FormatInt(ar.User.ID, 10), nil, access, 200)
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("list response: %v", err)
	}
	if len(list.Posts) != 3 {
		t.Fatalf("want 3 posts, got %d", len(list.Posts))
	}
	// newest first, the draft sorted by creation time rather than above everything
	got := []string{list.Posts[0].Slug, list.Posts[1].Slug, list.Posts[2].Slug}
	want := []string{last, middle, first}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func hostPort(t *testing.T, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("parse %q: %v", base, err)
	}
	return u.Host
}
