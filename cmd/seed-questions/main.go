package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/database"
	"github.com/quizdrill/backend/internal/logger"
	"github.com/quizdrill/backend/internal/repository"
	"github.com/quizdrill/backend/internal/service"
)

// sampleBank is a small starter bank in the bulk upload format, used when
// no file is given.
const sampleBank = `QUESTION: Which layer of the OSI model handles routing?
TOPIC: Networking
SUBTOPIC: OSI Model
DIFFICULTY: easy
OPTION A: Physical
OPTION B: Network
OPTION C: Session
OPTION D: Application
CORRECT: B
EXPLANATION: Routing between networks is a layer 3 (network layer) concern.

QUESTION: What does ACID stand for in database transactions?
TOPIC: Databases
SUBTOPIC: Transactions
DIFFICULTY: medium
OPTION A: Atomicity, Consistency, Isolation, Durability
OPTION B: Availability, Consistency, Integrity, Durability
OPTION C: Atomicity, Concurrency, Isolation, Distribution
OPTION D: Availability, Concurrency, Integrity, Distribution
CORRECT: A

QUESTION: Which HTTP status code indicates a resource was created?
TOPIC: Web
SUBTOPIC: HTTP
DIFFICULTY: easy
OPTION A: 200
OPTION B: 201
OPTION C: 204
OPTION D: 301
CORRECT: B
EXPLANATION: 201 Created is returned when a new resource results from the request.
`

func main() {
	var bankFile string
	flag.StringVar(&bankFile, "file", "", "Path to a bulk-format question file (default: built-in sample bank)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	topicRepo := repository.NewTopicRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(pool, questionRepo, topicRepo, log)

	text := sampleBank
	if bankFile != "" {
		raw, err := os.ReadFile(bankFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", bankFile).Msg("Failed to read question file")
		}
		text = string(raw)
	}

	fmt.Println("=== Seeding Question Bank ===")

	imported, err := questionService.BulkImport(ctx, text)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk import failed")
	}

	fmt.Printf("Imported %d questions\n", imported)
}
