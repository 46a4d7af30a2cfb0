// Package migrations применяет миграции MongoDB (создание индексов) через golang-migrate.
package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.mongodb.org/mongo-driver/mongo"
)

// MigrationsCollection - коллекция, в которой golang-migrate хранит версию схемы.
const MigrationsCollection = "schema_migrations"

// Run применяет все миграции из каталога path к базе database.
// Повторный запуск без новых миграций не считается ошибкой.
func Run(client *mongo.Client, database, path string) error {
	const op = "migrations.Run"

	driver, err := mongodb.WithInstance(client, &mongodb.Config{
		DatabaseName:         database,
		MigrationsCollection: MigrationsCollection,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithDatabaseInstance(
		"file://"+path,
		"mongodb",
		driver,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
