package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"giftcard-market/internal/command"
	"giftcard-market/internal/config"
	"giftcard-market/internal/market"
	"giftcard-market/internal/store"

	"github.com/schollz/progressbar/v3"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

func main() {
	abortFlag := flag.Bool("a", false, "abort on the first error instead of continuing")
	progressFlag := flag.Bool("p", false, "display a progress bar on stderr")
	flag.Parse()

	cfg := config.MustLoad()
	if cfg.App.Debug {
		log.Printf("Starting %s v%s (store: %s)", cfg.App.Name, cfg.App.Version, cfg.Store.Backend)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: failed to open %s store: %v", cfg.Store.Backend, err)
	}

	m := market.New(st, cfg.Market.HouseAccount, cfg.Market.DefaultCommissionRate,
		market.WithDebug(cfg.App.Debug))

	ctx := context.Background()
	if err := m.EnsureHouseAccount(ctx); err != nil {
		st.Close()
		log.Fatalf("FATAL: failed to create house account: %v", err)
	}

	abortOnError := *abortFlag || cfg.Market.AbortOnError
	dispatcher := command.New(m, os.Stderr, abortOnError)

	files := flag.Args()
	var bar *progressbar.ProgressBar
	if *progressFlag || cfg.Market.ProgressBar {
		bar = newProgressBar(files)
	}

	if err := processInput(ctx, dispatcher, files, bar); err != nil {
		// The aborting message is already on stderr.
		st.Close()
		os.Exit(1)
	}

	summary, err := m.Summary(ctx)
	if err != nil {
		st.Close()
		log.Fatalf("FATAL: failed to produce account summary: %v", err)
	}
	for _, line := range summary {
		fmt.Println(line)
	}

	if err := st.Close(); err != nil {
		log.Printf("Warning: failed to close store: %v", err)
	}
}

// openStore builds the record-store backend selected by configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return openSQLStore("sqlite", cfg.Store.SQLitePath)
	case "mysql":
		return openSQLStore("mysql", cfg.MySQL.DSN())
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// openSQLStore connects via database/sql and verifies the connection.
func openSQLStore(driver, dsn string) (store.Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(3 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	st, err := store.NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// processInput feeds every line from the given files, or stdin when none
// are given, through the dispatcher. The returned error is non-nil only
// when the dispatcher aborted.
func processInput(ctx context.Context, d *command.Dispatcher, files []string, bar *progressbar.ProgressBar) error {
	if len(files) == 0 {
		return processLines(ctx, d, os.Stdin, "stdio", bar)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		err = processLines(ctx, d, f, name, bar)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func processLines(ctx context.Context, d *command.Dispatcher, r io.Reader, source string, bar *progressbar.ProgressBar) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if err := d.Process(ctx, scanner.Text(), source, lineNumber); err != nil {
			return err
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("FATAL: failed to read %s: %v", source, err)
	}
	return nil
}

// newProgressBar sizes the bar by pre-counting lines when reading files;
// stdin gets an indeterminate spinner.
func newProgressBar(files []string) *progressbar.ProgressBar {
	total := int64(-1)
	if len(files) > 0 {
		total = countLines(files)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionClearOnFinish(),
	)
}

func countLines(files []string) int64 {
	var total int64
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			total++
		}
		f.Close()
	}
	return total
}

// init sets up logging format
func init() {
	log.SetFlags(log.Ldate | log.Ltime)
}
