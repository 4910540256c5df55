package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

const testCSV = "Match_id;Date;Tournoi;Stade compet;home_team;away_team;LINK\n" +
	"M001;12/04/2024;Ligue A;Finale;Racing;Stade Lyon;https://v/m001\n" +
	"M002;05/04/2024;Ligue A;Demi-finale;Racing;Évian;\n" +
	"M003;05/04/2024;Coupe de France;Groupe;Stade Lyon;Racing2;\n" +
	"M004;à confirmer;Ligue B;Groupe;Évian;Angers;\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_PATH", "")
	t.Setenv("COLUMNS_FILE", "")
	t.Setenv("WATCH", "")
	t.Setenv("LOCATION", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func sourceFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "match_data.csv")
	if err := os.WriteFile(p, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list", "--source", sourceFile(t), "--team", "Racing", "--from", "2024-04-01", "--to", "2024-04-30", "-q", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "M001") || !strings.HasPrefix(lines[1], "M002") {
		t.Errorf("unexpected order:\n%s", out)
	}
	if lines[2] != "2 match(s)" {
		t.Errorf("footer = %q", lines[2])
	}
}

func TestListCommand_BadDate(t *testing.T) {
	if _, err := run(t, "list", "--source", sourceFile(t), "--from", "someday", "--to", ""); err == nil {
		t.Fatal("expected error")
	}
	// reset for later tests sharing the command's flag vars
	filterFlags.from = ""
}

func TestOptionsCommand(t *testing.T) {
	out, err := run(t, "options", "--source", sourceFile(t))
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	for _, want := range []string{"Competitions (3)", "Phases (3)", "Teams (5)", "  Angers\n  Évian\n  Racing\n  Racing2\n  Stade Lyon\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHashTokenCommand(t *testing.T) {
	out, err := run(t, "hash-token", "correct-horse-battery")
	if err != nil {
		t.Fatalf("hash-token: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("correct-horse-battery")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	if _, err := run(t, "hash-token", "short"); err == nil {
		t.Fatal("expected error for short token")
	}
}
