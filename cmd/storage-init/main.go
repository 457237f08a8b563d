package main

import (
	"context"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"taskpad/activity"
	"taskpad/config"
	"taskpad/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage init starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	defaults := config.LoadDefaults()
	tasksTable := envOr("TASKS_TABLE", defaults.TasksTable)
	usersTable := envOr("USERS_TABLE", defaults.UsersTable)

	ctx := context.Background()
	if err := storage.EnsureTables(ctx, connStr, tasksTable, usersTable); err != nil {
		log.Fatalf("create tables: %v", err)
	}
	if err := activity.EnsureQueue(ctx, connStr, os.Getenv("ACTIVITY_QUEUE")); err != nil {
		log.Fatalf("create queue: %v", err)
	}

	log.WithFields(log.Fields{"tasks": tasksTable, "users": usersTable}).Info("storage init complete")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
