package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/abhisek/termdojo/internal/domain"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "dojo", "POSTGRES_PASSWORD": "dojopass", "POSTGRES_DB": "termdojo"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "docker") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://dojo:dojopass@%s:%s/termdojo?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t, ctx)

	var s *Store
	var err error
	// The port can accept connections before the server is ready.
	for i := 0; i < 10; i++ {
		if s, err = Open(DriverPostgres, dsn); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	terms := s.TermRepo()
	term, err := terms.Create(ctx, "index", "db")
	if err != nil {
		t.Fatalf("create term: %v", err)
	}
	if err := terms.SetProficiency(ctx, term.ID, 55); err != nil {
		t.Fatalf("set proficiency: %v", err)
	}
	listed, err := terms.List(ctx, TermFilter{Tags: []string{"db"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Proficiency != 55 {
		t.Errorf("list = %+v", listed)
	}

	prompts := s.PromptRepo()
	p, err := prompts.Create(ctx, "SQL", "Ask about SQL.")
	if err != nil {
		t.Fatalf("create prompt: %v", err)
	}
	if p.ID == domain.DefaultPromptID {
		t.Fatal("serial sequence not advanced past the seed prompt")
	}
	if err := prompts.Select(ctx, p.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := prompts.AppendInstruction(ctx, p.ID, "mention joins"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := prompts.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id, _ := prompts.SelectedID(ctx); id != domain.DefaultPromptID {
		t.Errorf("selection = %d after delete", id)
	}

	logs := s.StudyLogRepo()
	if err := logs.Append(ctx, domain.StudyLog{TermID: term.ID, Word: "index", Tag: "db", Result: domain.ResultCorrect, ProficiencyBefore: 45, ProficiencyAfter: 55}); err != nil {
		t.Fatalf("append log: %v", err)
	}
	avgs, err := logs.TagAverages(ctx)
	if err != nil {
		t.Fatalf("tag averages: %v", err)
	}
	if len(avgs) != 1 || avgs[0].AvgProficiency != 55 {
		t.Errorf("tag averages = %+v", avgs)
	}

	if _, err := terms.Get(ctx, 424242); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get missing: err = %v", err)
	}
}
