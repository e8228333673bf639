package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := runProgram(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runProgram implements the CLI: <program> <database_file> <command>. It
// returns an error (never calling os.Exit itself) so tests can drive it
// directly and inspect both the error and the captured stdout.
func runProgram(args []string) error {
	if len(args) < 3 {
		fmt.Println("Usage: your_program.sh <database file> <command>")
		return fmt.Errorf("usage: %s <database file> <command>", programName(args))
	}

	databaseFilePath := args[1]
	command := args[2]

	fmt.Fprintln(os.Stderr, "Logs from your program will appear here!")

	ctx, cancel := context.WithTimeout(context.Background(), DefaultDatabaseConfig().ReadTimeout)
	defer cancel()

	db, err := OpenDatabase(ctx, databaseFilePath)
	if err != nil {
		return err
	}
	defer db.Close()

	formatter := NewFormatter(os.Stdout)

	switch command {
	case ".dbinfo":
		return runDBInfo(db, formatter)
	case ".tables":
		return runTables(ctx, db, formatter)
	default:
		return runSQL(ctx, db, formatter, command)
	}
}

func programName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "sqlite-reader"
}

func runDBInfo(db *Database, formatter *Formatter) error {
	count, err := db.RootPageCellCount()
	if err != nil {
		return err
	}
	formatter.WriteDBInfo(db.PageSize(), count)
	return nil
}

func runTables(ctx context.Context, db *Database, formatter *Formatter) error {
	catalog, err := db.Catalog(ctx)
	if err != nil {
		return err
	}
	formatter.WriteTableNames(catalog.TableNames())
	return nil
}

func runSQL(ctx context.Context, db *Database, formatter *Formatter, sql string) error {
	query, err := ParseSelect(sql)
	if err != nil {
		return err
	}

	executor, err := db.Executor(ctx)
	if err != nil {
		return err
	}

	lines, err := executor.Execute(query)
	if err != nil {
		return err
	}

	formatter.WriteRows(lines)
	return nil
}
