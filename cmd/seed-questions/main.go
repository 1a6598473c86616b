package main

import (
	"context"
	"fmt"
	"time"

	"github.com/edventure/edventure-backend/internal/config"
	"github.com/edventure/edventure-backend/internal/database"
	"github.com/edventure/edventure-backend/internal/logger"
	"github.com/edventure/edventure-backend/internal/model"
	"github.com/edventure/edventure-backend/internal/repository"
	"github.com/edventure/edventure-backend/internal/service"
)

// seedQuestion is one row of the built-in question bank.
type seedQuestion struct {
	Text        string
	Type        model.QuestionType
	Options     []string
	Answer      string
	Explanation string
	Level       model.GradeLevel
	Subject     string
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionService := service.NewQuestionService(repository.NewQuestionRepository(pool))

	seeds := buildSeedBank()
	fmt.Printf("=== Seeding %d Questions ===\n", len(seeds))

	successCount := 0
	for _, s := range seeds {
		req := &model.CreateQuestionRequest{
			QuestionText:  s.Text,
			QuestionType:  string(s.Type),
			Options:       s.Options,
			CorrectAnswer: s.Answer,
			Explanation:   s.Explanation,
			Level:         string(s.Level),
			Subject:       s.Subject,
		}
		if _, err := questionService.Create(ctx, req); err != nil {
			log.Error().Err(err).Str("question", s.Text).Msg("Failed to seed question")
			continue
		}
		successCount++
	}

	fmt.Printf("Done. %d/%d questions seeded.\n", successCount, len(seeds))
}

// buildSeedBank returns a starter bank covering every question type for a
// few level/subject combinations. Matching answers use the canonical
// "left:right;left:right" encoding.
func buildSeedBank() []seedQuestion {
	var seeds []seedQuestion

	// Mathematics, standard-4: enough MCQs to run an easy exam.
	mathMCQ := []struct {
		text    string
		options []string
		answer  string
	}{
		{"What is 12 x 8?", []string{"84", "92", "96", "108"}, "96"},
		{"What is 144 / 12?", []string{"10", "11", "12", "14"}, "12"},
		{"Which fraction equals 0.5?", []string{"1/3", "1/2", "2/3", "3/4"}, "1/2"},
		{"What is the perimeter of a square with side 7 cm?", []string{"14 cm", "21 cm", "28 cm", "49 cm"}, "28 cm"},
		{"What is 305 + 498?", []string{"793", "803", "813", "903"}, "803"},
		{"Which number is a multiple of 9?", []string{"35", "46", "54", "62"}, "54"},
		{"What is 1000 - 637?", []string{"263", "363", "463", "373"}, "363"},
		{"How many minutes are in 2 hours?", []string{"60", "90", "100", "120"}, "120"},
		{"What is the place value of 7 in 4,735?", []string{"7", "70", "700", "7000"}, "700"},
		{"Which shape has exactly 3 sides?", []string{"Square", "Triangle", "Pentagon", "Circle"}, "Triangle"},
		{"What is 15 x 6?", []string{"80", "85", "90", "95"}, "90"},
		{"Round 468 to the nearest hundred.", []string{"400", "450", "470", "500"}, "500"},
	}
	for _, q := range mathMCQ {
		seeds = append(seeds, seedQuestion{
			Text: q.text, Type: model.QuestionTypeMCQ, Options: q.options,
			Answer: q.answer, Level: "standard-4", Subject: "Mathematics",
		})
	}

	// Science, standard-4: mixed types.
	seeds = append(seeds,
		seedQuestion{
			Text: "Which planet is known as the Red Planet?", Type: model.QuestionTypeMCQ,
			Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, Answer: "Mars",
			Explanation: "Iron oxide on its surface gives Mars a reddish colour.",
			Level:       "standard-4", Subject: "Science",
		},
		seedQuestion{
			Text: "What gas do plants absorb from the air during photosynthesis?",
			Type: model.QuestionTypeShortAnswer, Answer: "carbon dioxide",
			Explanation: "Plants take in carbon dioxide and release oxygen.",
			Level:       "standard-4", Subject: "Science",
		},
		seedQuestion{
			Text: "Name the process by which water turns into vapour.",
			Type: model.QuestionTypeShortAnswer, Answer: "evaporation",
			Level: "standard-4", Subject: "Science",
		},
		seedQuestion{
			Text: "Explain why we see lightning before we hear thunder.",
			Type: model.QuestionTypeSubjective,
			Answer: "Light travels much faster than sound, so the flash reaches our " +
				"eyes before the sound reaches our ears.",
			Level: "standard-4", Subject: "Science",
		},
		seedQuestion{
			Text: "Match each animal to its group.", Type: model.QuestionTypeMatching,
			Options: []string{"Frog:Amphibian", "Eagle:Bird", "Shark:Fish", "Bat:Mammal"},
			Answer:  "Frog:Amphibian;Eagle:Bird;Shark:Fish;Bat:Mammal",
			Level:   "standard-4", Subject: "Science",
		},
		seedQuestion{
			Text: "Match each sense organ to what it detects.", Type: model.QuestionTypeMatching,
			Options: []string{"Eye:Light", "Ear:Sound", "Nose:Smell", "Tongue:Taste"},
			Answer:  "Eye:Light;Ear:Sound;Nose:Smell;Tongue:Taste",
			Level:   "standard-4", Subject: "Science",
		},
	)

	// English, standard-3: lookback material for standard-4 students.
	seeds = append(seeds,
		seedQuestion{
			Text: "Which word is a noun?", Type: model.QuestionTypeMCQ,
			Options: []string{"Run", "Happy", "Table", "Quickly"}, Answer: "Table",
			Level: "standard-3", Subject: "English",
		},
		seedQuestion{
			Text: "What is the plural of 'child'?", Type: model.QuestionTypeShortAnswer,
			Answer: "children",
			Level:  "standard-3", Subject: "English",
		},
		seedQuestion{
			Text: "Write a sentence using the word 'because'.",
			Type: model.QuestionTypeSubjective,
			Answer: "Any complete sentence that uses 'because' to join a reason to a " +
				"statement.",
			Level: "standard-3", Subject: "English",
		},
	)

	// History, form-2: secondary school material.
	seeds = append(seeds,
		seedQuestion{
			Text: "In which year did the Second World War end?", Type: model.QuestionTypeMCQ,
			Options: []string{"1943", "1944", "1945", "1946"}, Answer: "1945",
			Level: "form-2", Subject: "History",
		},
		seedQuestion{
			Text: "Name the ancient wonder located in Giza.", Type: model.QuestionTypeShortAnswer,
			Answer: "the great pyramid",
			Level:  "form-2", Subject: "History",
		},
		seedQuestion{
			Text: "Match each civilisation to its river valley.", Type: model.QuestionTypeMatching,
			Options: []string{"Egypt:Nile", "Mesopotamia:Tigris", "India:Indus", "China:Yellow River"},
			Answer:  "Egypt:Nile;Mesopotamia:Tigris;India:Indus;China:Yellow River",
			Level:   "form-2", Subject: "History",
		},
	)

	return seeds
}
