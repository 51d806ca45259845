package model

// ReleaseInfo represents the latest published release of the upstream repository
type ReleaseInfo struct {
	Owner   string // Repository owner
	Repo    string // Repository name
	TagName string // Release tag name, as published (may have a "v" prefix)
}
