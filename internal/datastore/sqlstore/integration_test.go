//go:build integration

package sqlstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/asksql/asksql/internal/schema"
)

const fixtureSchema = `
CREATE TABLE users (id BIGINT PRIMARY KEY, name VARCHAR(255) NOT NULL);
CREATE TABLE orders (
  id BIGINT PRIMARY KEY,
  user_id BIGINT NOT NULL,
  status VARCHAR(32) NOT NULL,
  delivery_date DATE NOT NULL,
  CONSTRAINT orders_user_fk FOREIGN KEY (user_id) REFERENCES users (id)
);
CREATE TABLE migrations (id INT PRIMARY KEY, migration VARCHAR(255));
CREATE VIEW big_orders AS SELECT id, user_id, status FROM orders WHERE status = 'pending';
INSERT INTO users (id, name) VALUES (1, 'Ana'), (2, 'Luis');
INSERT INTO orders (id, user_id, status, delivery_date) VALUES
  (10, 1, 'pending', CURDATE() + INTERVAL 1 DAY),
  (11, 1, 'completed', CURDATE() - INTERVAL 2 DAY),
  (12, 2, 'pending', CURDATE() + INTERVAL 1 DAY);
`

func TestMySQLIntegration(t *testing.T) {
	if os.Getenv("ASKSQL_TEST_DOCKER") == "" {
		t.Skip("set ASKSQL_TEST_DOCKER=1 to run container-backed tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	scriptPath := t.TempDir() + "/schema.sql"
	if err := os.WriteFile(scriptPath, []byte(fixtureSchema), 0o600); err != nil {
		t.Fatalf("write schema script: %v", err)
	}

	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("laravel"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("root"),
		tcmysql.WithScripts(scriptPath),
	)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate mysql container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	db, err := Open(ctx, DBConfig{Driver: "mysql", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db, MySQL)
	description, err := schema.NewIntrospector(store, nil).Describe(ctx)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if got := description.Names(); len(got) != 3 || got[0] != "big_orders" || got[1] != "orders" || got[2] != "users" {
		t.Fatalf("tables = %#v", got)
	}
	view, _ := description.Table("big_orders")
	if len(view.Columns) != 3 || view.Columns[2].Name != "status" {
		t.Fatalf("big_orders columns = %#v", view.Columns)
	}
	orders, _ := description.Table("orders")
	if len(orders.ForeignKeys) != 1 || orders.ForeignKeys[0].References != "users.id" {
		t.Fatalf("orders foreign keys = %#v", orders.ForeignKeys)
	}
	if orders.Columns[3].Name != "delivery_date" || orders.Columns[3].Type != "date" {
		t.Fatalf("orders columns = %#v", orders.Columns)
	}

	rows, err := store.Query(ctx, "SELECT COUNT(*) FROM orders WHERE delivery_date = CURDATE() + INTERVAL 1 DAY;")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	count, _ := rows.Records[0].Get("COUNT(*)")
	if count != int64(2) {
		t.Fatalf("count = %#v", count)
	}

	if _, err := store.Query(ctx, "SELECT * FROM missing_table;"); err == nil {
		t.Fatal("expected execution error for missing table")
	}
}
