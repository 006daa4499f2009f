package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration file %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_refresh_tokens_table.sql",
		"00003_create_products_table.sql",
		"00004_create_orders_table.sql",
		"00005_create_order_items_table.sql",
		"00006_create_payments_table.sql",
		"00007_create_shipments_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		contentStr := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":          "00001_create_users_table.sql",
		"refresh_tokens": "00002_create_refresh_tokens_table.sql",
		"products":       "00003_create_products_table.sql",
		"orders":         "00004_create_orders_table.sql",
		"order_items":    "00005_create_order_items_table.sql",
		"payments":       "00006_create_payments_table.sql",
		"shipments":      "00007_create_shipments_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		contentStr := readMigration(t, migrationFile)

		if !strings.Contains(contentStr, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestUsersTableHasRequiredColumns(t *testing.T) {
	contentStr := readMigration(t, "00001_create_users_table.sql")

	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"email VARCHAR",
		"password_hash VARCHAR",
		"first_name VARCHAR",
		"last_name VARCHAR",
		"phone VARCHAR",
		"address VARCHAR",
		"role VARCHAR",
		"active BOOLEAN",
		"recovery_code VARCHAR",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Users table missing required column definition: %s", column)
		}
	}
}

// Stock must carry the non-negative CHECK: it is the database-level
// backstop for the reservation invariant.
func TestProductsTableGuardsStock(t *testing.T) {
	contentStr := readMigration(t, "00003_create_products_table.sql")

	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"name VARCHAR",
		"category VARCHAR",
		"description TEXT",
		"price DECIMAL",
		"stock INTEGER",
		"active BOOLEAN",
	}
	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}

	if !strings.Contains(contentStr, "CHECK (stock >= 0)") {
		t.Error("Products table missing non-negative stock constraint")
	}
	if !strings.Contains(contentStr, "CHECK (price >= 0)") {
		t.Error("Products table missing non-negative price constraint")
	}
}

func TestOrderItemsTableCapturesUnitPrice(t *testing.T) {
	contentStr := readMigration(t, "00005_create_order_items_table.sql")

	if !strings.Contains(contentStr, "unit_price DECIMAL") {
		t.Error("Order items table missing the captured unit_price column")
	}
	if !strings.Contains(contentStr, "CHECK (quantity > 0)") {
		t.Error("Order items table missing positive quantity constraint")
	}
	if !strings.Contains(contentStr, "REFERENCES orders(id) ON DELETE CASCADE") {
		t.Error("Order items must cascade on order deletion")
	}
}

// Payments and shipments are one-to-one with orders: a UNIQUE order_id
// is what enforces it.
func TestPaymentAndShipmentAreOnePerOrder(t *testing.T) {
	for _, file := range []string{
		"00006_create_payments_table.sql",
		"00007_create_shipments_table.sql",
	} {
		contentStr := readMigration(t, file)

		if !strings.Contains(contentStr, "order_id UUID UNIQUE NOT NULL") {
			t.Errorf("%s missing unique order_id constraint", file)
		}
		if !strings.Contains(contentStr, "REFERENCES orders(id) ON DELETE CASCADE") {
			t.Errorf("%s must cascade on order deletion", file)
		}
	}
}
