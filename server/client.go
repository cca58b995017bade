package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	internalstrings "github.com/amonks/kanban/internal/strings"
)

// DefaultClientTimeout bounds each RPC made by a Client.
const DefaultClientTimeout = 10 * time.Second

// Client calls board RPCs. Errors returned by the server unwrap to the
// matching board sentinel errors.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string) *Client {
	baseURL := internalstrings.TrimTrailingSlash(addr)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: DefaultClientTimeout}}
}

// Board returns the full board snapshot.
func (c *Client) Board(ctx context.Context) (board.Board, error) {
	var response boardResponse
	err := c.post(ctx, "/board", emptyRequest{}, &response)
	return response.Board, err
}

// Add creates a backlog item.
func (c *Client) Add(ctx context.Context, title, description string) (board.Item, error) {
	var response itemResponse
	err := c.post(ctx, "/items/add", addRequest{Title: title, Description: description}, &response)
	return response.Item, err
}

// Move changes the status of the item with the given full id.
func (c *Client) Move(ctx context.Context, id string, status board.Status) (board.Item, error) {
	var response itemResponse
	err := c.post(ctx, "/items/move", moveRequest{ID: id, Status: status}, &response)
	return response.Item, err
}

// Reorder moves an item to position within its column.
func (c *Client) Reorder(ctx context.Context, id string, position int) (board.Item, error) {
	var response itemResponse
	err := c.post(ctx, "/items/reorder", reorderRequest{ID: id, Position: position}, &response)
	return response.Item, err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.post(ctx, "/items/delete", idRequest{ID: id}, &emptyResponse{})
}

// Update edits the title or description of an item.
func (c *Client) Update(ctx context.Context, id string, opts board.UpdateOptions) (board.Item, error) {
	var response itemResponse
	err := c.post(ctx, "/items/update", updateRequest{ID: id, Title: opts.Title, Description: opts.Description}, &response)
	return response.Item, err
}

// Get returns one item by full id.
func (c *Client) Get(ctx context.Context, id string) (board.Item, error) {
	var response itemResponse
	err := c.post(ctx, "/items/get", idRequest{ID: id}, &response)
	return response.Item, err
}

// Resolve expands an id prefix to the full id.
func (c *Client) Resolve(ctx context.Context, prefix string) (string, error) {
	var response resolveResponse
	err := c.post(ctx, "/items/resolve", idRequest{ID: prefix}, &response)
	return response.ID, err
}

// SearchDone returns done items matching query.
func (c *Client) SearchDone(ctx context.Context, query string) ([]board.Item, error) {
	var response itemsResponse
	err := c.post(ctx, "/items/search", searchRequest{Query: query}, &response)
	return response.Items, err
}

// WIP reports the in-progress count and limit.
func (c *Client) WIP(ctx context.Context) (board.WIPStatus, error) {
	var response wipResponse
	err := c.post(ctx, "/wip", emptyRequest{}, &response)
	return response.WIP, err
}

// SetWIPLimit changes the WIP limit.
func (c *Client) SetWIPLimit(ctx context.Context, limit int) error {
	return c.post(ctx, "/wip/set", setWIPRequest{Limit: limit}, &wipResponse{})
}

// Categories lists the category names the server knows.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var response categoriesResponse
	err := c.post(ctx, "/categories", emptyRequest{}, &response)
	return response.Categories, err
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func readErrorResponse(resp *http.Response) error {
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return &Error{Kind: payload.Kind, Message: payload.Error, Status: resp.StatusCode}
	}
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("board server error: %s", resp.Status), Status: resp.StatusCode}
}
