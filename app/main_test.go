package main

import (
	"io"
	"os"
	"strings"
	"testing"
)

func TestMainFunctionality(t *testing.T) {
	dbPath := "testdata/sample.db"
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Skip("testdata/sample.db not found, skipping main functionality test")
	}

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "dbinfo command",
			args:     []string{"test", dbPath, ".dbinfo"},
			contains: []string{"database page size:", "number of tables:"},
		},
		{
			name:     "tables command",
			args:     []string{"test", dbPath, ".tables"},
			contains: []string{"apples"},
		},
		{
			name:     "sql select count(*)",
			args:     []string{"test", dbPath, "SELECT COUNT(*) FROM apples"},
			contains: []string{"4"},
		},
		{
			name:     "sql select single column",
			args:     []string{"test", dbPath, "SELECT name FROM apples"},
			contains: []string{"Granny Smith", "Fuji", "Honeycrisp", "Golden Delicious"},
		},
		{
			name:     "sql select multiple columns",
			args:     []string{"test", dbPath, "SELECT name, color FROM apples"},
			contains: []string{"Fuji|Red"},
		},
		{
			name:     "sql select with where clause",
			args:     []string{"test", dbPath, "SELECT name, color FROM apples WHERE color = 'Yellow'"},
			contains: []string{"Golden Delicious|Yellow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			err := runProgram(tt.args)
			w.Close()
			os.Stdout = oldStdout

			outputBytes, _ := io.ReadAll(r)
			output := string(outputBytes)

			if err != nil {
				t.Fatalf("runProgram returned error: %v, output: %s", err, output)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("output should contain %q, got: %s", expected, output)
				}
			}
		})
	}
}

func TestMainWithInvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: []string{"test"}},
		{name: "only database path", args: []string{"test", "testdata/sample.db"}},
		{name: "nonexistent database", args: []string{"test", "/nonexistent/database.db", ".dbinfo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			err := runProgram(tt.args)
			w.Close()
			os.Stdout = oldStdout
			io.ReadAll(r)

			if err == nil {
				t.Errorf("expected an error for invalid args, got nil")
			}
		})
	}
}
