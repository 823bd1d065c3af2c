package model

// Staff is a workshop operator allowed to move orders through production.
type Staff struct {
	Login string `json:"login"`
}
