package model

// Sources is the persisted packaging record. The three fields are always
// replaced together.
type Sources struct {
	Version string `json:"version"`
	Rev     string `json:"rev"`
	Hash    string `json:"hash"`
}
