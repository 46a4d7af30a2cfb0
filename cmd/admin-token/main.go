// Package main выпускает bearer-токен администратора для доступа к API.
//
// Пример:
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/admin-token -user 64b7f0c2a1b2c3d4e5f60718 -name root
package main

import (
	"flag"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/jwt"
)

func main() {
	userID := flag.String("user", "", "admin user id (hex ObjectID)")
	username := flag.String("name", "", "admin username")
	role := flag.String("role", jwt.RoleAdmin, "token role")
	flag.Parse()

	if _, err := primitive.ObjectIDFromHex(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "-user must be a 24-character hex ObjectID")
		os.Exit(2)
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL).GenerateToken(*userID, *username, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
