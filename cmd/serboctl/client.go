package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// client speaks the daemon's form-encoded control protocol. Control endpoints
// answer plain-text codes; "-1" is the generic failure code.
type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *client) postForm(path string, form url.Values) (string, error) {
	resp, err := c.http.PostForm(c.base+path, form)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return strings.TrimSpace(string(b)), nil
}

// postCode runs a control operation that answers "1" on success.
func (c *client) postCode(path string, form url.Values) error {
	body, err := c.postForm(path, form)
	if err != nil {
		return err
	}
	if body != "1" {
		return fmt.Errorf("%s failed (code %s)", path, body)
	}
	return nil
}

func (c *client) getJSON(path string, v any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// console fetches captured output lines from a line offset onward.
func (c *client) console(id string, from int) ([]string, error) {
	resp, err := c.http.PostForm(c.base+"/getConsole", url.Values{
		"target_id":  {id},
		"start_line": {fmt.Sprint(from)},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(b)) == "-1" {
		return nil, fmt.Errorf("server %s is offline", id)
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("decode console: %w", err)
	}
	return lines, nil
}
