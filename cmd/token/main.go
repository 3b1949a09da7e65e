// Command token mints an operator token for the feeledger API.
//
//	JWT_SECRET=... token -id op-1 -name "Front desk"
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mmynk/feeledger/internal/auth"
	"github.com/mmynk/feeledger/internal/config"
	"github.com/mmynk/feeledger/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	operatorID := flag.String("id", "", "operator ID stamped on recorded payments")
	name := flag.String("name", "", "operator display name")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if *operatorID == "" {
		fmt.Fprintln(os.Stderr, "usage: token -id <operator-id> [-name <name>]")
		os.Exit(2)
	}
	if !cfg.AuthEnabled() {
		slog.Error("JWT_SECRET must be set to mint tokens")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration).Generate(*operatorID, *name)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}

	slog.Info("Token generated", "operator_id", *operatorID, "expires_in", cfg.TokenDuration)
	fmt.Println(token)
}
