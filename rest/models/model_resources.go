package models

type Resources struct {
	Resources []string `json:"resources"`
}
