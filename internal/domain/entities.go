package domain

type Chunk struct {
	ID       string
	SourceID string
	Position int
	Text     string
}

type SearchResult struct {
	Text  string
	Score float64
}

type Stats struct {
	TotalChunks  int
	TotalSources int
}
