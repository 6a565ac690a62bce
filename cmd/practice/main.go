package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"sqldrill/internal/catalog"
	"sqldrill/internal/config"
	"sqldrill/internal/database"
	"sqldrill/internal/engine"
	"sqldrill/internal/models"
	"sqldrill/internal/orchestrator"
	"sqldrill/internal/repository"
	"sqldrill/internal/service"
)

// A terminal practice client. It drives the same orchestrator the browser
// does, against a local database, so exercises can be worked through
// without the web UI.
func main() {
	learnerID := flag.Int64("learner", 1, "Learner ID to practice as")
	flag.Parse()

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load exercise catalog: %v", err)
	}

	attemptRepo := repository.NewAttemptRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eng := engine.New()
	practiceService := service.NewPracticeService(cat, eng, attemptRepo, sessionRepo)

	orch := orchestrator.New(cat, eng, practiceService, sessionRepo, *learnerID)
	defer orch.Exit()

	ctx := context.Background()

	ex, err := orch.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to start practice: %v", err)
	}
	showExercise(ex, cat.Count())

	fmt.Println(`Type SQL to explore the dataset. Commands: \submit <sql>, \next, \quit`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("sql> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == `\quit`:
			return

		case strings.HasPrefix(line, `\submit `):
			query := strings.TrimSpace(strings.TrimPrefix(line, `\submit `))
			result, err := orch.Submit(ctx, query)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			showVerdict(result)

		case line == `\next`:
			next, err := orch.Next(ctx)
			if err != nil {
				var violation *orchestrator.ContractViolationError
				if errors.As(err, &violation) {
					fmt.Println("Solve the current exercise first.")
					continue
				}
				fmt.Printf("error: %v\n", err)
				continue
			}
			if orch.Done() {
				fmt.Println("All exercises complete. Well done!")
				return
			}
			showExercise(next, cat.Count())

		case strings.HasPrefix(line, `\`):
			fmt.Println("Unknown command. Commands: \\submit <sql>, \\next, \\quit")

		default:
			rows, err := orch.RunQuery(ctx, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			showRows(rows)
		}
	}
}

func showExercise(ex models.Exercise, total int) {
	fmt.Printf("\nExercise %d of %d [%s / %s]\n%s\n\n", ex.ID, total, ex.Category, ex.Difficulty, ex.Prompt)
}

func showVerdict(result *service.SubmissionResult) {
	if result.Verdict.Correct {
		fmt.Printf("Correct! (attempt %d)\n", result.AttemptCount)
		for i, step := range result.ExplanationSteps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
		fmt.Println(`Type \next to continue.`)
		return
	}

	if result.Verdict.LearnerError != "" {
		fmt.Printf("Your query errored: %s\n", result.Verdict.LearnerError)
		return
	}
	fmt.Printf("Not quite. (attempt %d) Try again.\n", result.AttemptCount)
}

func showRows(rows *engine.RowSet) {
	fmt.Println(strings.Join(rows.Columns, " | "))
	for _, row := range rows.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d rows)\n", len(rows.Rows))
}
