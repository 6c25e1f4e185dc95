// main.go — userdb demo
// ============================================================
// Runs every repository operation once against the configured
// database (see config.Config for the environment it reads):
//
//  1. Connect (fail fast: the process exits if the database is unreachable)
//  2. GetAll, GetFullName, GetEmail, GetID, GetFieldByID, IsAdult for id 1
//  3. Add a new user
//  4. Edit the email of id 1
//  5. ChangeStatus of id 1 to 2
//
// Apply the schema first with `go run ./cmd/migrate up`.
// ============================================================
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/userdb/config"
	"github.com/Skryldev/userdb/db"
	"github.com/Skryldev/userdb/logging"
	"github.com/Skryldev/userdb/metrics"
	"github.com/Skryldev/userdb/models"
	"github.com/Skryldev/userdb/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	collector := metrics.NewCollector(nil)
	conn := cfg.Connection()

	store, err := repo.Connect(conn, cfg.DBConfig(
		db.NewLogHook(db.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: cfg.SlowQueryThreshold,
		}),
		collector.Hook(),
	))
	if err != nil {
		fatalf("Connection failed: %v", err)
	}
	defer store.Close()

	slog.Info("database connected", "db", conn)

	ctx := context.Background()
	const id = 1

	users, err := store.GetAll(ctx)
	if err != nil {
		fatalf("get all users: %v", err)
	}
	for _, u := range users {
		fmt.Printf("%d\t%s\t%s\t%s\t%d\n", u.ID, u.FullName(), u.Email, u.Birthday.Format(models.DateLayout), u.Status)
	}

	fullName, err := store.GetFullName(ctx, id)
	if err != nil {
		fatalf("get full name: %v", err)
	}
	printOr(fullName.Valid, fullName.V, "Full name not found")

	email, err := store.GetEmail(ctx, id)
	if err != nil {
		fatalf("get email: %v", err)
	}
	printOr(email.Valid, email.V, "Email not found")

	userID, err := store.GetID(ctx, id)
	if err != nil {
		fatalf("get id: %v", err)
	}
	printOr(userID.Valid, userID.V, "User ID not found")

	birthday, err := store.GetFieldByID(ctx, id, models.FieldBirthday)
	if err != nil {
		fatalf("get birthday: %v", err)
	}
	printOr(birthday.Valid, birthday.V, "Birthday not found")

	adult, err := store.IsAdult(ctx, id)
	if err != nil {
		fatalf("is adult: %v", err)
	}
	if adult {
		fmt.Println("User is an adult")
	} else {
		fmt.Println("User is a minor")
	}

	newID, err := store.Add(ctx, models.CreateUserParams{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john.doe@example.com",
		Password:  "password",
		Birthday:  time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:    1,
	})
	if err != nil {
		fatalf("add user: %v", err)
	}
	slog.Info("added user", "id", newID)

	newEmail := "john.doe@example.com"
	if err := store.Edit(ctx, id, models.UpdateUserParams{Email: &newEmail}); err != nil {
		fatalf("edit user: %v", err)
	}

	if err := store.ChangeStatus(ctx, id, 2); err != nil {
		fatalf("change status: %v", err)
	}

	slog.Info("all operations completed", "pool_open", store.DB().Stats().OpenConnections)
}

func printOr(ok bool, v any, missing string) {
	if !ok {
		fmt.Println(missing)
		return
	}
	if t, isTime := v.(time.Time); isTime {
		v = t.Format(models.DateLayout)
	}
	fmt.Println(v)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
