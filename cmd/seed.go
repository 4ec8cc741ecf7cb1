package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkazemy/subman/internal/config"
	"github.com/nkazemy/subman/internal/db"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/util"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo customers and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo customers and products...")

		if err := seedCustomers(sqlDB); err != nil {
			return err
		}
		if err := seedProducts(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedCustomers inserts demo customers with the password "demo-password"
// (idempotent on email).
func seedCustomers(dbx *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	customers := []model.Customer{
		{ID: util.NewID(), Name: "Acme Corp", Email: "billing@acme.example"},
		{ID: util.NewID(), Name: "Foobar LLC", Email: "ops@foobar.example"},
		{ID: util.NewID(), Name: "Beta Testers", Email: "beta@testers.example"},
	}

	const q = `
INSERT INTO customers (id, name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, c := range customers {
		if _, err := tx.Exec(q, c.ID, c.Name, c.Email, string(hash), now); err != nil {
			return fmt.Errorf("insert customer %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit customers: %w", err)
	}
	return nil
}

// seedProducts inserts demo products (idempotent on name).
func seedProducts(dbx *sqlx.DB) error {
	type demoProduct struct {
		name         string
		description  string
		customizable bool
		price        float64
		periodicity  model.Periodicity
	}

	products := []demoProduct{
		{"Starter", "Entry plan, fixed layout", false, 9.99, model.PeriodicityMonthly},
		{"Pro", "Full feature set", false, 99.00, model.PeriodicityAnnually},
		{"Accessibility Widget", "Embeddable widget with configurable colors and language", true, 29.00, model.PeriodicityMonthly},
	}

	const q = `
INSERT INTO products (id, name, description, customizable, price, periodicity, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE description = VALUES(description)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, p := range products {
		if _, err := tx.Exec(q, util.NewID(), p.name, p.description, p.customizable, p.price, p.periodicity.String(), now); err != nil {
			return fmt.Errorf("insert product %q: %w", p.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}
