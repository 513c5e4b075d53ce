package views

// Page is everything the inspector page shows about a site configuration.
// It mirrors the root package types so views stays free of import cycles.
type Page struct {
	Title    string
	Subtitle string
	URL      string
	Checksum string
	Menu     []Link
	Author   Author
	Contacts []Link
	Settings []Setting
	Admin    bool
}

// Link is a labeled href.
type Link struct {
	Label string
	Href  string
}

// Author is the author card.
type Author struct {
	Name     string
	PhotoURL string
	Bio      string
}

// Setting is one scalar config value shown in the settings table.
type Setting struct {
	Key   string
	Value string
}

// SnapshotRow is one line of the admin snapshot table.
type SnapshotRow struct {
	ID        string
	CreatedAt string
	Source    string
	Checksum  string
}
