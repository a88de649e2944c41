package provider

// Repository represents a git repository.
type Repository struct {
	Name          string
	FullName      string // owner/repo
	Description   string
	URL           string
	DefaultBranch string
	ForksCount    int
}

// Fork represents one fork of a repository.
type Fork struct {
	FullName      string
	URL           string
	DefaultBranch string
}

// Entry is one item in a repository tree listing.
type Entry struct {
	Name string
	Path string
	Type string // file, dir
}

// EntryTypeFile and EntryTypeDir are the normalized Entry types across
// providers.
const (
	EntryTypeFile = "file"
	EntryTypeDir  = "dir"
)
