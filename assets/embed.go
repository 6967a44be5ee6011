package assets

import (
	"embed"
	"io"
)

//go:embed poems.json
var FS embed.FS

// DefaultCorpusName is the embedded sample of Tang poems used when no corpus
// file is configured.
const DefaultCorpusName = "poems.json"

// OpenDefaultCorpus opens the embedded sample corpus.
func OpenDefaultCorpus() (io.ReadCloser, error) {
	return FS.Open(DefaultCorpusName)
}
