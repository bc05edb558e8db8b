package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
)

const threeQuestionCorpus = `1.- ¿Qué artículo reconoce la igualdad ante la ley?
a) El 14 b) El 15 c) El 16 d) El 17

2.- La dignidad de la persona se recoge en el artículo:
a) 9 b) 10 c) 11 d) 12

3.- Los derechos fundamentales se regulan en el Título:
a) Preliminar
b) Primero
c) Segundo
d) Tercero
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func sampleInputs(t *testing.T) Inputs {
	dir := t.TempDir()
	return Inputs{
		CorpusPath:  writeFile(t, dir, "preguntas.txt", threeQuestionCorpus),
		AnswerPaths: []string{writeFile(t, dir, "respuestas.txt", "1. a\n3. b\n")},
		MappingPath: writeFile(t, dir, "mapeo.csv", "article,question_numbers\n10,\"1,2,3\"\n"),
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	store := setupStore(t)
	p := Pipeline{Loader: NewLoader(store)}
	ctx := context.Background()

	sum, err := p.Run(ctx, sampleInputs(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Blocks != 3 || sum.Parsed != 3 || sum.Answered != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if diff := cmp.Diff([]int{2}, sum.Unanswered); diff != "" {
		t.Errorf("unanswered mismatch (-want +got):\n%s", diff)
	}
	if sum.Load == nil || sum.Load.QuestionsInserted != 2 || sum.Load.LinksInserted != 2 {
		t.Fatalf("unexpected load report %+v", sum.Load)
	}

	rows, err := store.Conn().Query(`SELECT original_question_number, title_id, article_number FROM question_articles ORDER BY original_question_number`)
	if err != nil {
		t.Fatalf("query links: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var n, art int
		var title string
		if err := rows.Scan(&n, &title, &art); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if art != 10 || title != "titulo-1" {
			t.Errorf("question %d linked to %s art. %d; want titulo-1 art. 10", n, title, art)
		}
		got = append(got, title)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 join rows, got %d", len(got))
	}

	var correct int
	if err := store.Conn().QueryRow(`SELECT correct_answer FROM questions WHERE original_number = 3`).Scan(&correct); err != nil {
		t.Fatalf("query question 3: %v", err)
	}
	if correct != 1 {
		t.Errorf("question 3 correct_answer = %d, want 1", correct)
	}

	// A second run over the same inputs converges on the same rows.
	if _, err := p.Run(ctx, sampleInputs(t)); err != nil {
		t.Fatalf("second run: %v", err)
	}
	c, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c.Questions != 2 || c.Links != 2 {
		t.Fatalf("unexpected counts after rerun %+v", c)
	}
}

func TestPipelineDryRun(t *testing.T) {
	in := sampleInputs(t)
	dir := filepath.Dir(in.CorpusPath)
	// The override key disagrees on question 1 and adds question 2.
	in.AnswerPaths = append(in.AnswerPaths, writeFile(t, dir, "respuestas2.txt", "1. c\n2. d\n"))
	in.MappingPath = writeFile(t, dir, "mapeo2.csv", "article,question_numbers\n10,\"1,2,9\"\n")

	sum, err := (&Pipeline{DryRun: true}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Load != nil {
		t.Fatalf("dry run must not load")
	}
	if sum.Answered != 3 || len(sum.Unanswered) != 0 {
		t.Fatalf("unexpected answered set %+v", sum)
	}
	if len(sum.Conflicts) != 1 || sum.Conflicts[0].Question != 1 || sum.Conflicts[0].Value != 2 {
		t.Fatalf("unexpected conflicts %+v", sum.Conflicts)
	}
	if diff := cmp.Diff([]int{9}, sum.UnknownMapped); diff != "" {
		t.Errorf("unknown mapped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, sum.Unmapped); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
	if sum.Links != 3 || sum.LoadableLinks != 2 {
		t.Errorf("links = %d loadable = %d, want 3 and 2", sum.Links, sum.LoadableLinks)
	}
	if sum.Warnings() != 3 {
		t.Errorf("warnings = %d, want 3", sum.Warnings())
	}
}

func TestPipelineLegacyEncodedCorpus(t *testing.T) {
	in := sampleInputs(t)
	raw, err := charmap.Windows1252.NewEncoder().String(threeQuestionCorpus)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	in.CorpusPath = writeFile(t, filepath.Dir(in.CorpusPath), "latin1.txt", raw)

	sum, err := (&Pipeline{DryRun: true}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.CorpusCharset == "UTF-8" {
		t.Errorf("expected a legacy charset, got %s", sum.CorpusCharset)
	}
	if sum.Parsed != 3 {
		t.Fatalf("parsed = %d, want 3", sum.Parsed)
	}
}

func TestPipelineMissingInputIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Inputs)
	}{
		{"corpus", func(in *Inputs) { in.CorpusPath += ".missing" }},
		{"answers", func(in *Inputs) { in.AnswerPaths[0] += ".missing" }},
		{"mapping", func(in *Inputs) { in.MappingPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInputs(t)
			tt.mutate(&in)
			fs := newFakeStore()
			_, err := (&Pipeline{Loader: NewLoader(fs)}).Run(context.Background(), in)
			if !errors.Is(err, ErrInputFile) {
				t.Fatalf("expected ErrInputFile, got %v", err)
			}
			if fs.deleteCall != 0 {
				t.Fatalf("store must not be touched when inputs are missing")
			}
		})
	}
}
