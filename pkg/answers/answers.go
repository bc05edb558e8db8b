package answers

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/corpus"
)

// Letters maps answer indexes to their option letters.
const Letters = "abcd"

// Warning records an answer-key token that could not be used.
type Warning struct {
	Source string
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// Key is one parsed answer-key file: question number -> option index 0..3.
type Key struct {
	Source   string
	Answers  map[int]int
	Warnings []Warning
}

// A token is a question number, an optional separator run and a single letter word.
var reToken = regexp.MustCompile(`\b(\d+)\s*[.\-):=]*\s*([A-Za-z])\b`)

// An answer line holds nothing but tokens, optionally separated by commas or semicolons.
var reKeyLine = regexp.MustCompile(`^\s*(?:\d+\s*[.\-):=]*\s*[A-Za-z]\b[\s,;]*)+$`)

// ParseKey parses answer-key text. Each line holds one or more "N<sep>L"
// tokens ("1. a", "2.- B", "3) c 4 d"). Lines without tokens are ignored; a
// line that mixes tokens with other words ("tema 1 a 50") is skipped with a
// warning. Within a single key a repeated number keeps the later value and is reported.
func ParseKey(source, text string) Key {
	k := Key{Source: source, Answers: make(map[int]int)}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		matches := reToken.FindAllStringSubmatch(sc.Text(), -1)
		if len(matches) == 0 {
			continue
		}
		if !reKeyLine.MatchString(sc.Text()) {
			k.warn(line, fmt.Sprintf("not an answer line: %q", strings.TrimSpace(sc.Text())))
			continue
		}
		for _, m := range matches {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				k.warn(line, fmt.Sprintf("invalid question number %q", m[1]))
				continue
			}
			idx := strings.IndexByte(Letters, strings.ToLower(m[2])[0])
			if idx < 0 {
				k.warn(line, fmt.Sprintf("question %d: answer %q is not one of a-d", n, m[2]))
				continue
			}
			if prev, ok := k.Answers[n]; ok && prev != idx {
				k.warn(line, fmt.Sprintf("question %d: answer %c overrides earlier %c", n, Letters[idx], Letters[prev]))
			}
			k.Answers[n] = idx
		}
	}
	return k
}

func (k *Key) warn(line int, reason string) {
	k.Warnings = append(k.Warnings, Warning{Source: k.Source, Line: line, Reason: reason})
}

// Conflict records a question answered differently by two keys.
type Conflict struct {
	Question       int
	Previous       int
	PreviousSource string
	Value          int
	Source         string
}

func (c Conflict) String() string {
	return fmt.Sprintf("question %d: %s says %c, %s says %c (kept %c)",
		c.Question, c.PreviousSource, Letters[c.Previous], c.Source, Letters[c.Value], Letters[c.Value])
}

// Merged is the combined answer map.
type Merged struct {
	Answers map[int]int
	// Sources names the key each answer came from.
	Sources   map[int]string
	Conflicts []Conflict
}

// Merge combines keys in argument order. When several keys answer the same
// question the last one wins; every disagreement is recorded as a Conflict.
func Merge(keys ...Key) Merged {
	m := Merged{Answers: make(map[int]int), Sources: make(map[int]string)}
	for _, k := range keys {
		nums := make([]int, 0, len(k.Answers))
		for n := range k.Answers {
			nums = append(nums, n)
		}
		sort.Ints(nums)

		for _, n := range nums {
			v := k.Answers[n]
			if prev, ok := m.Answers[n]; ok && prev != v {
				m.Conflicts = append(m.Conflicts, Conflict{
					Question:       n,
					Previous:       prev,
					PreviousSource: m.Sources[n],
					Value:          v,
					Source:         k.Source,
				})
			}
			m.Answers[n] = v
			m.Sources[n] = k.Source
		}
	}
	return m
}

// Answered is a parsed question together with its correct option index.
type Answered struct {
	corpus.Question
	Correct int
}

// Apply attaches answers to questions. Questions without an answer are
// excluded and their numbers returned in corpus order.
func (m Merged) Apply(questions []corpus.Question) ([]Answered, []int) {
	var (
		out     []Answered
		missing []int
	)
	for _, q := range questions {
		idx, ok := m.Answers[q.Number]
		if !ok {
			missing = append(missing, q.Number)
			continue
		}
		out = append(out, Answered{Question: q, Correct: idx})
	}
	return out, missing
}
