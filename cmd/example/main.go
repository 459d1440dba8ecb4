package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/elbader17/quire/pkg/quire"
	"github.com/rs/zerolog"
)

type User struct {
	CreatedAt time.Time  `quire:"createdAt"`
	Email     string     `quire:"email"`
	Name      string     `quire:"name"`
	Age       int        `quire:"age"`
	BirthDate *time.Time `quire:"birthDate"`
	IsMarried bool       `quire:"isMarried"`
}

func main() {
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)

	spreadsheetID := os.Getenv("SHEET_ID")
	refreshToken := os.Getenv("REFRESH_TOKEN")
	if spreadsheetID == "" || refreshToken == "" {
		logger.Fatal().Msg("SHEET_ID and REFRESH_TOKEN must be set")
	}

	secret, err := os.ReadFile("google-credentials.json")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read client secret")
	}

	ts, err := quire.NewRefreshTokenSource(ctx, secret, refreshToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build token source")
	}

	db, err := quire.New(quire.Config{
		SpreadsheetID: spreadsheetID,
		TokenSource:   ts,
		Logger:        &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create database")
	}
	defer db.Close()

	userSchema, err := quire.NewSchema(
		quire.Field{Name: "email", Kind: quire.KindString, Column: "D"},
		quire.Field{Name: "name", Kind: quire.KindString, Column: "E"},
		quire.Field{Name: "age", Kind: quire.KindNumber, Column: "F"},
		quire.Field{Name: "birthDate", Kind: quire.KindDatetime, Column: "G", Optional: true},
		quire.Field{Name: "isMarried", Kind: quire.KindBoolean, Column: "H", Optional: true},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid schema")
	}

	users := db.Model(userSchema)

	id, err := users.InsertOne(ctx, quire.Data{
		"email":     "helal@example.com",
		"name":      "Helal",
		"age":       47,
		"birthDate": time.Date(1978, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to insert user")
	}

	if err := users.UpdateOne(ctx, id, quire.Data{"isMarried": true}); err != nil {
		logger.Fatal().Err(err).Msg("failed to update user")
	}

	rec, err := users.GetOne(ctx, id)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get user")
	}
	fmt.Printf("User %s: %v\n", rec.ID, rec.Values)

	records, err := users.FindMany(ctx, quire.Query{
		Filter: quire.Or{
			quire.Where("age").Gte(18).Lt(65),
			quire.Where("name").StartsWith("He"),
		},
		Limit: 10,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to query users")
	}

	var results []User
	if err := quire.ScanAll(records, &results); err != nil {
		logger.Fatal().Err(err).Msg("failed to scan users")
	}

	fmt.Printf("Found %d users:\n", len(results))
	for _, u := range results {
		fmt.Printf("  - %s (%s), %d\n", u.Name, u.Email, u.Age)
	}

	if err := users.DeleteOne(ctx, id); err != nil {
		logger.Fatal().Err(err).Msg("failed to delete user")
	}
}
