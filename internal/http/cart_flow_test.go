package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"sentryhome/internal/config"
	"sentryhome/internal/domain"
	"sentryhome/internal/http/handlers"
	"sentryhome/internal/repos"
)

func newApp(t *testing.T, apiURL string) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	deps := handlers.NewDeps(db, config.Config{APIBaseURL: apiURL, HTTPTimeout: 2})

	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/items", deps.CartHandler.Add)
	app.Put("/cart/items/:id", deps.CartHandler.Update)
	app.Delete("/cart/items/:id", deps.CartHandler.Remove)
	app.Delete("/cart", deps.CartHandler.Clear)
	app.Get("/cart/count", deps.CartHandler.Count)
	app.Post("/login", deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/account", handlers.RequireUser(deps.Auth), deps.AuthHandler.Account)
	return app, db
}

func sidOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" && ck.Value != "" {
			return ck.Value
		}
	}
	t.Fatal("no sid cookie set")
	return ""
}

func jsonReq(method, target, sid, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return req
}

func TestGuestAddViewCount(t *testing.T) {
	app, _ := newApp(t, "http://127.0.0.1:1") // backend never called on the guest path

	resp, err := app.Test(jsonReq("POST", "/cart/items", "",
		`{"productId":"cam-01","name":"Outdoor Camera","price":149.99,"inStock":true,"availableStock":5,"quantity":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var add struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&add); err != nil {
		t.Fatal(err)
	}
	if !add.OK {
		t.Fatal("add should succeed")
	}
	sid := sidOf(t, resp)

	resp, err = app.Test(jsonReq("GET", "/cart", sid, ""))
	if err != nil {
		t.Fatal(err)
	}
	var view struct {
		Items []domain.CartLine `json:"items"`
		Total float64           `json:"total"`
		Count int               `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 1 || view.Items[0].Qty != 3 || view.Count != 3 {
		t.Fatalf("bad cart view: %+v", view)
	}
	if view.Total < 449.96 || view.Total > 449.98 {
		t.Fatalf("bad total: %v", view.Total)
	}

	resp, err = app.Test(jsonReq("GET", "/cart/count", sid, ""))
	if err != nil {
		t.Fatal(err)
	}
	var cnt struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cnt); err != nil {
		t.Fatal(err)
	}
	if cnt.Count != 3 {
		t.Fatalf("want count=3, got %d", cnt.Count)
	}
}

func TestAddRejectsMalformedBody(t *testing.T) {
	app, _ := newApp(t, "http://127.0.0.1:1")

	resp, err := app.Test(jsonReq("POST", "/cart/items", "", `{not json`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("POST", "/cart/items", "", `{"name":"No ID","inStock":true}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing productId should 400, got %d", resp.StatusCode)
	}
}

// Remote API stub covering login, merge and the server cart read.
func fakeCommerceAPI(t *testing.T) (*httptest.Server, *[]domain.CartLine, *int) {
	t.Helper()
	serverCart := &[]domain.CartLine{}
	merges := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
			fmt.Fprint(w, `{"token":"tok-test"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/cart/merge":
			if r.Header.Get("Authorization") != "Bearer tok-test" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var body struct {
				Items []domain.CartLine `json:"items"`
			}
			b, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(b, &body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			*serverCart = append(*serverCart, body.Items...)
			*merges++
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/cart":
			_ = json.NewEncoder(w).Encode(*serverCart)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv, serverCart, merges
}

func TestLoginMergesGuestCart(t *testing.T) {
	srv, serverCart, merges := fakeCommerceAPI(t)
	defer srv.Close()
	app, db := newApp(t, srv.URL)

	resp, err := app.Test(jsonReq("POST", "/cart/items", "",
		`{"productId":"lock-01","name":"Smart Lock","price":229,"inStock":true,"availableStock":4,"quantity":2}`))
	if err != nil {
		t.Fatal(err)
	}
	sid := sidOf(t, resp)

	resp, err = app.Test(jsonReq("POST", "/login", sid,
		`{"email":"alice@sentryhome.test","password":"Passw0rd!"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("login failed with %d", resp.StatusCode)
	}
	var login struct {
		OK      bool `json:"ok"`
		Notices []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatal(err)
	}
	if !login.OK || len(login.Notices) == 0 {
		t.Fatalf("login should confirm the merge, got %+v", login)
	}
	if *merges != 1 || len(*serverCart) != 1 || (*serverCart)[0].Qty != 2 {
		t.Fatalf("merge not applied server-side: merges=%d cart=%+v", *merges, *serverCart)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM guest_carts`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("guest record must be gone after merge")
	}

	// The cart now reads from the remote API.
	resp, err = app.Test(jsonReq("GET", "/cart/count", sid, ""))
	if err != nil {
		t.Fatal(err)
	}
	var cnt struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cnt); err != nil {
		t.Fatal(err)
	}
	if cnt.Count != 2 {
		t.Fatalf("want server-backed count=2, got %d", cnt.Count)
	}
}

func TestAccountRequiresLogin(t *testing.T) {
	srv, _, _ := fakeCommerceAPI(t)
	defer srv.Close()
	app, _ := newApp(t, srv.URL)

	resp, err := app.Test(jsonReq("GET", "/account", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 without a session token, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("POST", "/login", "",
		`{"email":"alice@sentryhome.test","password":"Passw0rd!"}`))
	if err != nil {
		t.Fatal(err)
	}
	sid := sidOf(t, resp)

	resp, err = app.Test(jsonReq("GET", "/account", sid, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200 after login, got %d", resp.StatusCode)
	}
	var acct struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		t.Fatal(err)
	}
	if acct.Email != "alice@sentryhome.test" {
		t.Fatalf("bad account email: %q", acct.Email)
	}
}
