package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const testCorpus = `Preguntas de repaso

1.- ¿Qué artículo reconoce la igualdad ante la ley?
a) El 14 b) El 15 c) El 16 d) El 17

2.- Los españoles son iguales ante la ley según el artículo:
a) 9 b) 14 c) 27 d) 33

3.- La soberanía nacional reside en:
a) El Rey
b) Las Cortes
c) El pueblo español
d) El Gobierno
`

type workspace struct {
	resources string
	dbPath    string
}

func newWorkspace(t *testing.T, mapping string) workspace {
	t.Helper()
	dir := t.TempDir()
	res := filepath.Join(dir, "resources")
	if err := os.Mkdir(res, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"preguntas.txt":       testCorpus,
		"respuestas.txt":      "1. a\n2. b\n3. c\n",
		"mapeo_articulos.csv": mapping,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(res, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return workspace{resources: res, dbPath: filepath.Join(dir, "constitucion.db")}
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{logger: zap.NewNop()}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--db-url", w.dbPath, "--resources", w.resources))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const cleanMapping = "article,question_numbers\n14,\"1,2\"\n1,3\n"

func TestMigrateQuizAndProgress(t *testing.T) {
	ws := newWorkspace(t, cleanMapping)

	out, err := ws.run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3 questions, 3 links (0 failed batches") {
		t.Errorf("unexpected migrate output:\n%s", out)
	}

	out, err = ws.run(t, "validate", "--store", "--strict")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Store: 3 questions (expected 3), 3 links (expected 3)") || !strings.HasSuffix(out, "OK\n") {
		t.Errorf("unexpected validate output:\n%s", out)
	}

	out, err = ws.run(t, "quiz", "--count", "2", "--seed", "5", "--answers")
	if err != nil {
		t.Fatalf("quiz: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Quiz: 2 questions (seed 5)") || !strings.Contains(out, "Key: 1-") {
		t.Errorf("unexpected quiz output:\n%s", out)
	}

	out, err = ws.run(t, "quiz", "--article", "14", "--answers")
	if err != nil {
		t.Fatalf("quiz by article: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Quiz: 2 questions") || !strings.Contains(out, "article 14") {
		t.Errorf("unexpected filtered quiz output:\n%s", out)
	}

	out, err = ws.run(t, "progress", "record", "ana", "3", "C")
	if err != nil || !strings.Contains(out, "Question 3: correct") {
		t.Fatalf("record: %v\n%s", err, out)
	}
	out, err = ws.run(t, "progress", "record", "ana", "1", "b")
	if err != nil || !strings.Contains(out, "Question 1: incorrect") {
		t.Fatalf("record: %v\n%s", err, out)
	}
	out, err = ws.run(t, "progress", "stats", "ana")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "ana: 2 answered, 1 correct (50%), 2 attempts") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
	out, err = ws.run(t, "progress", "reset", "ana")
	if err != nil || !strings.Contains(out, "Removed 2 progress rows") {
		t.Fatalf("reset: %v\n%s", err, out)
	}
}

func TestMigrateDryRunLeavesStoreEmpty(t *testing.T) {
	ws := newWorkspace(t, cleanMapping)
	out, err := ws.run(t, "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v\n%s", err, out)
	}
	if strings.Contains(out, "Loaded run") {
		t.Errorf("dry run must not load:\n%s", out)
	}
	if _, err := os.Stat(ws.dbPath); !os.IsNotExist(err) {
		t.Errorf("dry run created the database file")
	}
}

func TestValidateStrictFailsOnProblems(t *testing.T) {
	ws := newWorkspace(t, "article,question_numbers\n14,\"1,2,7\"\n")

	out, err := ws.run(t, "validate")
	if err != nil {
		t.Fatalf("non-strict validate must succeed: %v", err)
	}
	if !strings.Contains(out, "mapped but not in corpus: [7]") || !strings.Contains(out, "no article mapping: [3]") {
		t.Errorf("unexpected validate output:\n%s", out)
	}

	_, err = ws.run(t, "validate", "--strict")
	if !errors.Is(err, errValidation) {
		t.Fatalf("expected errValidation, got %v", err)
	}
}

func TestMissingResourceIsFatal(t *testing.T) {
	ws := newWorkspace(t, cleanMapping)
	if err := os.Remove(filepath.Join(ws.resources, "respuestas.txt")); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.run(t, "migrate"); err == nil {
		t.Fatal("expected an error for a missing answer file")
	}
}

func TestQuizEmptyStore(t *testing.T) {
	ws := newWorkspace(t, cleanMapping)
	if _, err := ws.run(t, "quiz"); err == nil || !strings.Contains(err.Error(), "no questions") {
		t.Fatalf("expected no questions error, got %v", err)
	}
}

func TestBuildLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := buildLogger(true, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !l.Core().Enabled(zap.DebugLevel) {
			t.Errorf("%s: verbose logger should enable debug", format)
		}
	}
	if _, err := buildLogger(false, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
