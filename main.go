package main

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studyplan/auth"
)

func main() {
	// Auto-load ./.env if present before reading vars.
	loadDotEnv()
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("config: ", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Support a lightweight migrate command: `./studyplan migrate`
	// runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		migrateDB(db)
		log.Println("migration completed")
		return
	}

	a, err := newApp(db, cfg)
	if err != nil {
		log.Fatal(err)
	}

	r := gin.Default()
	a.setupRoutes(r)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// app bundles the handlers' dependencies; construction is explicit and
// there are no package-level globals.
type app struct {
	db         *gorm.DB
	auth       *auth.Service
	signer     *auth.Signer
	cfg        *Config
	refreshTTL time.Duration
}

func newApp(db *gorm.DB, cfg *Config) (*app, error) {
	hasher := auth.NewHasher()
	signer := auth.NewSigner([]byte(cfg.AccessSecret), []byte(cfg.RefreshSecret))
	users := auth.NewGormUserStore(db)
	tokens := auth.NewGormTokenStore(db)
	verifier, err := auth.NewCredentialVerifier(users, hasher)
	if err != nil {
		return nil, err
	}
	svc, err := auth.NewService(users, tokens, signer, hasher, verifier, auth.Config{
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}
	refreshTTL, err := auth.ParseTTL(cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &app{db: db, auth: svc, signer: signer, cfg: cfg, refreshTTL: refreshTTL}, nil
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
