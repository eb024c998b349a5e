package models

// Rows is the response of a rows request: the selected records under "data" and the
// pagination state under "meta"
type Rows struct {
	Meta RowsMeta                 `json:"meta"`
	Data []map[string]interface{} `json:"data"`
}

type RowsMeta struct {
	Count      int    `json:"count"`
	Page       int    `json:"page,omitempty"`
	PerPage    int    `json:"per_page,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}
