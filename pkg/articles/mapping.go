package articles

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Link associates a question number with an article and its title.
type Link struct {
	Question int
	TitleID  string
	Article  int
}

// Warning records a CSV row or value that was skipped.
type Warning struct {
	Line   int
	Reason string
}

func (w Warning) String() string { return fmt.Sprintf("line %d: %s", w.Line, w.Reason) }

// Result is the outcome of parsing a mapping CSV.
type Result struct {
	Rows     int
	Links    []Link
	Warnings []Warning
}

// Questions returns the distinct question numbers referenced by the mapping.
func (r Result) Questions() map[int]bool {
	out := make(map[int]bool, len(r.Links))
	for _, l := range r.Links {
		out[l.Question] = true
	}
	return out
}

var (
	reArticlePrefix = regexp.MustCompile(`(?i)^(art[íi]culo|art\.?)\s*`)
	reParenthetical = regexp.MustCompile(`\([^)]*\)?`)
	reListSep       = regexp.MustCompile(`[,;\s]+`)
)

// NormalizeArticle turns an article identifier into its article number:
// "1.2" -> 1, "95 (cláusula)" -> 95, "Art. 10" -> 10. Zero is accepted and,
// like any number outside the title table, lands in the "otros" bucket.
func NormalizeArticle(s string) (int, error) {
	v := strings.TrimSpace(s)
	v = reArticlePrefix.ReplaceAllString(v, "")
	v = reParenthetical.ReplaceAllString(v, "")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid article %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid article %q: must not be negative", s)
	}
	return n, nil
}

var (
	articleHeaders  = []string{"article", "articulo", "artículo"}
	questionHeaders = []string{"question_numbers", "questions", "preguntas"}
)

// Mapper parses article mapping CSVs.
type Mapper struct {
	// Logger receives a warning per skipped row or value. nil means no logging.
	Logger *zap.Logger
}

// ParseCSV reads a CSV with a header row naming the article and question_numbers
// columns. Each row yields one link per question number, with the title derived
// from the article. Duplicate links are kept once, in first-seen order.
func (m *Mapper) ParseCSV(r io.Reader) (Result, error) {
	log := m.Logger
	if log == nil {
		log = zap.NewNop()
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(content))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("%w: empty mapping file", ErrMissingColumn)
	}
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}
	articleCol := columnIndex(header, articleHeaders)
	if articleCol < 0 {
		return Result{}, fmt.Errorf("%w: article", ErrMissingColumn)
	}
	questionCol := columnIndex(header, questionHeaders)
	if questionCol < 0 {
		return Result{}, fmt.Errorf("%w: question_numbers", ErrMissingColumn)
	}

	var res Result
	seen := make(map[Link]bool)
	warn := func(line int, reason string) {
		res.Warnings = append(res.Warnings, Warning{Line: line, Reason: reason})
		log.Warn("skipping mapping value", zap.Int("line", line), zap.String("reason", reason))
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}
		res.Rows++
		if articleCol >= len(record) || questionCol >= len(record) {
			warn(line, "row has too few columns")
			continue
		}

		article, err := NormalizeArticle(record[articleCol])
		if err != nil {
			warn(line, err.Error())
			continue
		}
		title := TitleFor(article)

		for _, tok := range reListSep.Split(strings.TrimSpace(record[questionCol]), -1) {
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n <= 0 {
				warn(line, fmt.Sprintf("invalid question number %q", tok))
				continue
			}
			l := Link{Question: n, TitleID: title.ID, Article: article}
			if seen[l] {
				continue
			}
			seen[l] = true
			res.Links = append(res.Links, l)
		}
	}

	log.Info("article mapping parsed", zap.Int("rows", res.Rows), zap.Int("links", len(res.Links)))
	return res, nil
}

// ParseCSV is shorthand for a Mapper without logging.
func ParseCSV(r io.Reader) (Result, error) {
	var m Mapper
	return m.ParseCSV(r)
}

func columnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
