package corpus

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrMalformedBlock is returned when a block lacks question text or one of the four options.
var ErrMalformedBlock = errors.New("malformed question block")

// Question is a parsed multiple-choice question.
type Question struct {
	Number  int
	Text    string
	Options [4]string
}

// Warning records a block that was dropped during parsing.
type Warning struct {
	Number int
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("question %d (line %d): %s", w.Number, w.Line, w.Reason)
}

// Result is the outcome of parsing a whole corpus.
type Result struct {
	// Blocks is the number of spans the splitter produced.
	Blocks    int
	Questions []Question
	Warnings  []Warning
}

// Discarded returns how many blocks did not produce a question.
func (r Result) Discarded() int { return r.Blocks - len(r.Questions) }

var optionLetters = [4]byte{'a', 'b', 'c', 'd'}

// ParseBlock extracts question text and options a) to d) from a block.
// Markers are matched positionally: each must appear after the previous one and
// must not follow a letter or digit, so "capital?a)" opens option a but "salud)" does not.
func ParseBlock(b Block) (Question, error) {
	q := Question{Number: b.Number}

	var marks [4]int
	from := 0
	for i, letter := range optionLetters {
		idx := findMarker(b.Body, letter, from)
		if idx < 0 {
			return Question{}, fmt.Errorf("%w: question %d: missing option %c)", ErrMalformedBlock, b.Number, letter)
		}
		marks[i] = idx
		from = idx + 2
	}

	q.Text = collapseSpace(b.Body[:marks[0]])
	if q.Text == "" {
		return Question{}, fmt.Errorf("%w: question %d: empty question text", ErrMalformedBlock, b.Number)
	}
	for i := range optionLetters {
		end := len(b.Body)
		if i+1 < len(marks) {
			end = marks[i+1]
		}
		q.Options[i] = collapseSpace(b.Body[marks[i]+2 : end])
		if q.Options[i] == "" {
			return Question{}, fmt.Errorf("%w: question %d: empty option %c)", ErrMalformedBlock, b.Number, optionLetters[i])
		}
	}
	return q, nil
}

// findMarker returns the index of the first "x)" marker for letter at or after from, or -1.
// The marker must not be glued to a preceding letter or digit.
func findMarker(s string, letter byte, from int) int {
	upper := letter - 'a' + 'A'
	for i := from; i+1 < len(s); i++ {
		if (s[i] != letter && s[i] != upper) || s[i+1] != ')' {
			continue
		}
		if i == 0 {
			return i
		}
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return i
		}
	}
	return -1
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Parser turns corpus text into questions.
type Parser struct {
	// Logger receives a warning for each dropped block. nil means no logging.
	Logger *zap.Logger
}

// Parse splits text into blocks and parses each one. Malformed blocks and
// repeated question numbers are dropped and reported in Result.Warnings;
// the first occurrence of a number wins.
func (p *Parser) Parse(text string) Result {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	blocks := SplitBlocks(text)
	res := Result{Blocks: len(blocks)}
	seen := make(map[int]bool, len(blocks))

	for _, b := range blocks {
		var reason string
		q, err := ParseBlock(b)
		switch {
		case err != nil:
			reason = err.Error()
		case seen[q.Number]:
			reason = "duplicate question number"
		}
		if reason != "" {
			w := Warning{Number: b.Number, Line: b.Line, Reason: reason}
			res.Warnings = append(res.Warnings, w)
			log.Warn("dropping question block", zap.Int("number", b.Number), zap.Int("line", b.Line), zap.String("reason", reason))
			continue
		}
		seen[q.Number] = true
		res.Questions = append(res.Questions, q)
	}

	log.Info("corpus parsed",
		zap.Int("blocks", res.Blocks),
		zap.Int("questions", len(res.Questions)),
		zap.Int("discarded", res.Discarded()))
	return res
}

// Parse is shorthand for a Parser without logging.
func Parse(text string) Result {
	var p Parser
	return p.Parse(text)
}
