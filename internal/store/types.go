package store

// Cask is one catalog entry as persisted locally. Names and BundleIDs
// are the lookup keys the resolver indexes; Token is unique within one
// catalog generation.
type Cask struct {
	Token             string
	Description       string
	Homepage          string
	Deprecated        bool
	DeprecationReason string
	Names             []string
	BundleIDs         []string
}
