package imgnamer

// SearchResult is one candidate produced by a reverse-image search engine.
type SearchResult struct {
	Dimensions Dimensions // as reported by the engine; zero when absent
	Title      string     // engine's title for the source page
	Location   string     // source page URL or bare hostname
	Snippet    string     // context text, display only
	Provider   string     // engine name, display only
}
