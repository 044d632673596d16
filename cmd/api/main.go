package main

import (
	"errors"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/snapgram-app/backend/internal/auth"
	"github.com/snapgram-app/backend/internal/database"
	"github.com/snapgram-app/backend/internal/media"
	"github.com/snapgram-app/backend/internal/server"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := database.New(database.ConfigFromEnv(), log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close(db)

	images := media.NewCloudinaryFromEnv()
	tokens := auth.NewManager(secret)

	srv := server.New(db, images, tokens, log)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
