package corpus

import (
	"regexp"
	"strconv"
	"strings"
)

// Block is one question's raw text span within the corpus.
type Block struct {
	Number int
	// Line is the 1-based line of the label in the corpus.
	Line int
	// Body is the text after the "N.-" label.
	Body string
}

// A label is "<integer>.-" at the start of a line, optionally indented.
var reLabel = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.-`)

// SplitBlocks segments corpus text into per-question blocks in corpus order.
// Text before the first label and blocks with an empty body are dropped.
func SplitBlocks(text string) []Block {
	locs := reLabel.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(locs))
	line := 1
	prev := 0
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		line += strings.Count(text[prev:loc[0]], "\n")
		prev = loc[0]

		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			// Only overflow can get here; treat like an unlabeled span.
			continue
		}
		blocks = append(blocks, Block{Number: n, Line: line, Body: body})
	}
	return blocks
}
