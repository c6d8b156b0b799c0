package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusmemory/quiz-backend/internal/config"
	"github.com/campusmemory/quiz-backend/internal/database"
	"github.com/campusmemory/quiz-backend/internal/logger"
	"github.com/campusmemory/quiz-backend/internal/model"
	"github.com/campusmemory/quiz-backend/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	quizRepo := repository.NewQuizRepository(pool)

	fmt.Println("=== Seeding Sample Quizzes ===")

	successCount := 0
	for _, quiz := range sampleQuizzes() {
		q := quiz
		if err := quizRepo.Create(ctx, &q); err != nil {
			fmt.Printf("Error creating quiz %q: %v\n", q.Title, err)
			continue
		}
		successCount++
		fmt.Printf("Created quiz %q with %d questions\n", q.Title, len(q.Questions))
	}

	fmt.Printf("\nSeed completed! Successfully added %d quizzes.\n", successCount)
}

func question(text string, options [4]string, correct int, explanation string) model.Question {
	return model.Question{
		ID:                 uuid.New().String(),
		Text:               text,
		Options:            options[:],
		CorrectOptionIndex: correct,
		Explanation:        explanation,
	}
}

func sampleQuizzes() []model.Quiz {
	return []model.Quiz{
		{
			Title:       "Data Structures Basics",
			Description: "Stacks, queues, trees and the complexity of everyday operations.",
			Category:    "Programming",
			Difficulty:  model.DifficultyEasy,
			Course:      "BCA",
			Program:     "CS",
			Year:        2,
			Section:     "A",
			Semester:    3,
			Tags:        []string{"dsa", "fundamentals"},
			Questions: []model.Question{
				question("Which data structure works on the LIFO principle?",
					[4]string{"Queue", "Stack", "Linked List", "Heap"}, 1,
					"A stack always removes the most recently pushed element."),
				question("What is the worst-case time to search a balanced binary search tree?",
					[4]string{"O(1)", "O(n)", "O(log n)", "O(n log n)"}, 2,
					"A balanced BST halves the search space at every level."),
				question("Which structure gives O(1) average lookup by key?",
					[4]string{"Array", "Hash table", "Binary tree", "Stack"}, 1,
					"Hashing maps a key straight to its bucket."),
				question("A queue serves elements in which order?",
					[4]string{"LIFO", "FIFO", "Random", "Priority"}, 1, ""),
			},
			TimeLimitSeconds: 30,
		},
		{
			Title:       "DBMS Fundamentals",
			Description: "Relational model, keys and normalization.",
			Category:    "Databases",
			Difficulty:  model.DifficultyMedium,
			Course:      "BCA",
			Program:     "CS",
			Year:        3,
			Section:     model.WildcardAll,
			Semester:    5,
			Tags:        []string{"dbms", "sql"},
			Questions: []model.Question{
				question("Which key uniquely identifies a row in a table?",
					[4]string{"Foreign key", "Primary key", "Candidate key", "Super key"}, 1,
					"Every table has at most one primary key."),
				question("Which normal form removes partial dependencies?",
					[4]string{"1NF", "2NF", "3NF", "BCNF"}, 1,
					"2NF requires every non-key attribute to depend on the whole key."),
				question("What does ACID stand for?",
					[4]string{
						"Atomicity, Consistency, Isolation, Durability",
						"Accuracy, Completeness, Integrity, Distribution",
						"Atomicity, Concurrency, Integrity, Durability",
						"Availability, Consistency, Isolation, Distribution",
					}, 0, ""),
				question("Which SQL clause filters grouped rows?",
					[4]string{"WHERE", "GROUP BY", "HAVING", "ORDER BY"}, 2,
					"WHERE filters rows before grouping, HAVING after."),
			},
			TimeLimitSeconds: 45,
		},
		{
			Title:       "Operating Systems",
			Description: "Processes, scheduling and memory management.",
			Category:    "Systems",
			Difficulty:  model.DifficultyHard,
			Course:      model.WildcardAll,
			Program:     "CS",
			Year:        0,
			Section:     model.WildcardAll,
			Semester:    4,
			Tags:        []string{"os"},
			Questions: []model.Question{
				question("Which scheduler decides which ready process runs next?",
					[4]string{"Long-term", "Short-term", "Medium-term", "I/O"}, 1,
					"The short-term (CPU) scheduler runs on every dispatch."),
				question("What is thrashing?",
					[4]string{
						"Deadlock between two processes",
						"Excessive paging that starves useful work",
						"CPU running at full utilization",
						"A race condition on shared memory",
					}, 1, ""),
				question("Which page replacement policy evicts the page unused for the longest time?",
					[4]string{"FIFO", "LRU", "Optimal", "Clock"}, 1,
					"LRU approximates the optimal policy using recency."),
			},
			TimeLimitSeconds: 60,
		},
		{
			Title:       "General Knowledge Warmup",
			Description: "A quick mixed round open to every program and year.",
			Category:    "General",
			Difficulty:  model.DifficultyEasy,
			Course:      model.WildcardAll,
			Program:     model.WildcardAll,
			Year:        0,
			Section:     model.WildcardAll,
			Semester:    0,
			Questions: []model.Question{
				question("What does HTTP stand for?",
					[4]string{
						"HyperText Transfer Protocol",
						"High Throughput Transport Protocol",
						"HyperText Transmission Process",
						"Host Transfer Text Protocol",
					}, 0, ""),
				question("Which company created the Go programming language?",
					[4]string{"Microsoft", "Google", "Apple", "Mozilla"}, 1, ""),
				question("How many bits are in one byte?",
					[4]string{"4", "8", "16", "32"}, 1, ""),
			},
			TimeLimitSeconds: 20,
		},
	}
}
