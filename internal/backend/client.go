package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sentryhome/internal/domain"
)

// Client is the outbound view of the remote commerce API that owns the
// catalog, the token issuer and the per-account server cart.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the server's own message when it sent one.
		var ae struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error != "" {
			return errors.New(ae.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) GetCart(ctx context.Context, token string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (c *Client) AddItem(ctx context.Context, token string, line domain.CartLine) error {
	return c.do(ctx, http.MethodPost, "/cart/add", token, line, nil)
}

func (c *Client) UpdateItem(ctx context.Context, token, productID string, qty int) error {
	body := struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"quantity"`
	}{productID, qty}
	return c.do(ctx, http.MethodPut, "/cart/update", token, body, nil)
}

func (c *Client) RemoveItem(ctx context.Context, token, productID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), token, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", token, nil, nil)
}

func (c *Client) MergeCart(ctx context.Context, token string, lines []domain.CartLine) error {
	body := struct {
		Items []domain.CartLine `json:"items"`
	}{lines}
	return c.do(ctx, http.MethodPost, "/cart/merge", token, body, nil)
}

// Login exchanges credentials for a bearer token with the remote issuer.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response missing token")
	}
	return out.Token, nil
}
