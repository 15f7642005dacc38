package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	transporthttp "github.com/vovakirdan/board-server/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		log.Printf("smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:3000", "board server base URL")
	text := flag.String("text", "hello from smoke test", "message text to post")
	bg := flag.String("bg", "#a6ff9d", "background colour")
	user := flag.String("admin-user", "admin", "admin username; empty skips admin checks")
	pass := flag.String("admin-pass", "changeme", "admin password")
	cleanup := flag.Bool("cleanup", false, "delete the posted message afterwards")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := &client{base: *addr, http: &http.Client{}, user: *user, pass: *pass}

	var posted transporthttp.SubmitMessageResponse
	body := map[string]string{"message": *text, "bgColor": *bg}
	if err := c.call(ctx, http.MethodPost, "/api/message", body, false, http.StatusCreated, &posted); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	fmt.Printf("posted at %s font=%s size=%s\n", posted.CreatedAt, posted.Style.FontFamily, posted.Style.TextSize)

	var current transporthttp.CurrentMessageResponse
	if err := c.call(ctx, http.MethodGet, "/api/message", nil, false, http.StatusOK, &current); err != nil {
		return fmt.Errorf("get current: %w", err)
	}
	if current.Message == nil || *current.Message != *text {
		return fmt.Errorf("current message mismatch: %v", current.Message)
	}
	fmt.Println("current message matches")

	if *user == "" {
		return nil
	}

	var list transporthttp.AdminListResponse
	if err := c.call(ctx, http.MethodGet, "/api/admin/messages?limit=1", nil, true, http.StatusOK, &list); err != nil {
		return fmt.Errorf("admin list: %w", err)
	}
	if len(list.Items) == 0 {
		return fmt.Errorf("admin list is empty (total %d)", list.Total)
	}
	fmt.Printf("admin list total=%d newest id=%d\n", list.Total, list.Items[0].ID)

	if *cleanup {
		var del transporthttp.DeleteResponse
		path := fmt.Sprintf("/api/admin/messages/%d", list.Items[0].ID)
		if err := c.call(ctx, http.MethodDelete, path, nil, true, http.StatusOK, &del); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Printf("deleted %d message(s)\n", del.Deleted)
	}

	return nil
}

type client struct {
	base string
	http *http.Client
	user string
	pass string
}

func (c *client) call(ctx context.Context, method, path string, in any, admin bool, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}
	return json.Unmarshal(raw, out)
}
