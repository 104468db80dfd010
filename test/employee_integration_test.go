//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	repo "github.com/ogurasousui/philocom-backoffice/internal/adapters/repository/postgres"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/config"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestEmployeeLifecycleIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		t.Skipf("store.driver=%s, integration tests need postgres", cfg.Store.Driver)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgdb.Open(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	employees := repo.NewEmployeeRepository(pool)
	svc := employee.NewService(employees, stubClock{now: time.Now().UTC()}, pgdb.NewTxManager(pool), nil)

	created, err := svc.CreateEmployee(ctx, employee.CreateEmployeeInput{Name: "Integration", Email: "Integration@Philocom.co", Department: "Dev"})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}
	if created.Email != "integration@philocom.co" || created.Status != employee.StatusActive {
		t.Fatalf("unexpected employee: %+v", created)
	}

	if _, err := svc.CreateEmployee(ctx, employee.CreateEmployeeInput{Name: "Dup", Email: "integration@philocom.co"}); !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	resolver := access.NewResolver(access.NewAuthorizer(access.Options{AllowHeaderIdentity: true}), employees)
	p, err := resolver.ResolveEmployee(ctx, access.Request{Headers: map[string]string{"X-Employee-Email": "INTEGRATION@philocom.co"}})
	if err != nil {
		t.Fatalf("ResolveEmployee error: %v", err)
	}
	if p == nil || p.Synthesized || p.Employee.ID != created.ID {
		t.Fatalf("expected stored employee, got %+v", p)
	}

	suspended := employee.StatusSuspended
	updated, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{ID: created.ID, Status: &suspended})
	if err != nil {
		t.Fatalf("UpdateEmployee error: %v", err)
	}
	if updated.Status != suspended || updated.Name != "Integration" {
		t.Fatalf("update not applied: %+v", updated)
	}

	p, err = resolver.ResolveEmployee(ctx, access.Request{Headers: map[string]string{"X-Employee-Email": "integration@philocom.co"}})
	if err != nil {
		t.Fatalf("ResolveEmployee error: %v", err)
	}
	if _, err := access.RequireActive(p); !errors.Is(err, access.ErrAccessDenied) {
		t.Fatalf("expected suspended employee to be denied, got %v", err)
	}

	deactivated, err := svc.DeactivateEmployee(ctx, employee.DeleteEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("DeactivateEmployee error: %v", err)
	}
	if deactivated.Status != employee.StatusInactive {
		t.Fatalf("expected inactive, got %s", deactivated.Status)
	}

	if err := svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if _, err := employees.FindByID(ctx, created.ID); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestMailboxIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		t.Skipf("store.driver=%s, integration tests need postgres", cfg.Store.Driver)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgdb.Open(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	employees := repo.NewEmployeeRepository(pool)
	svc := employee.NewService(employees, nil, pgdb.NewTxManager(pool), nil)

	alice, err := svc.CreateEmployee(ctx, employee.CreateEmployeeInput{Name: "Alice", Email: "alice@philocom.co"})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}
	bob, err := svc.CreateEmployee(ctx, employee.CreateEmployeeInput{Name: "Bob", Email: "bob@philocom.co"})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	mail := mailbox.NewService(repo.NewEmailRepository(pool), employees, nil, nil)
	if _, err := mail.SendEmail(ctx, alice, mailbox.SendEmailInput{To: []string{"bob@philocom.co", "client@example.com"}, Subject: "Hello"}); err != nil {
		t.Fatalf("SendEmail error: %v", err)
	}

	inbox, err := mail.ListFolder(ctx, bob, mailbox.ListFolderInput{Folder: mailbox.FolderInbox})
	if err != nil {
		t.Fatalf("ListFolder error: %v", err)
	}
	if len(inbox.Emails) != 1 || inbox.Emails[0].From != "alice@philocom.co" {
		t.Fatalf("unexpected inbox: %+v", inbox.Emails)
	}

	if _, err := mail.GetEmail(ctx, alice, inbox.Emails[0].ID); !errors.Is(err, mailbox.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	read, err := mail.MarkRead(ctx, bob, inbox.Emails[0].ID, true)
	if err != nil || !read.Read {
		t.Fatalf("MarkRead: %+v %v", read, err)
	}
}

func resetMigrations(dsn, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
