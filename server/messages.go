package server

import "github.com/amonks/kanban/board"

type addRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type idRequest struct {
	ID string `json:"id"`
}

type moveRequest struct {
	ID     string       `json:"id"`
	Status board.Status `json:"status"`
}

type reorderRequest struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

type updateRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type setWIPRequest struct {
	Limit int `json:"limit"`
}

type itemResponse struct {
	Item board.Item `json:"item"`
}

type itemsResponse struct {
	Items []board.Item `json:"items"`
}

type boardResponse struct {
	Board board.Board `json:"board"`
}

type wipResponse struct {
	WIP board.WIPStatus `json:"wip"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type resolveResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type emptyRequest struct{}

type emptyResponse struct{}
