// Package cli implements the ctxmem CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxmem/ctxmem/internal/config"
	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/security"
	"github.com/ctxmem/ctxmem/internal/store"
)

var dbPathFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ctxmem",
	Short: "Persistent context memory for AI agents",
	Long:  "A persistent memory store for AI agents. Tagged, typed, searchable entries on SQLite, with an MCP server built in.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPathFlag, "db", "d", "", "Database path (default: config file, CTXMEM_DB_PATH, or ~/.ctxmem/memories.db)")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	return cfg
}

func openStore() (*store.SQLiteStore, *config.Config) {
	cfg := loadConfig()
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	return s, cfg
}

func openManager() (*memory.Manager, *store.SQLiteStore) {
	s, _ := openStore()
	return memory.NewManager(s), s
}

// openSecure builds the security decorator from config. The key-derivation
// salt lives next to the database so decryption survives restarts.
func openSecure() (*security.SecureManager, *store.SQLiteStore) {
	s, cfg := openStore()
	mgr := memory.NewManager(s)

	var cipher *security.Cipher
	if cfg.Encryption.Enabled {
		salt, err := loadOrCreateSalt(cfg.DBPath + ".salt")
		if err != nil {
			s.Close()
			exitErr("load salt", err)
		}
		cipher, err = security.NewCipher(cfg.Encryption.Password, salt)
		if err != nil {
			s.Close()
			exitErr("init encryption", err)
		}
	}

	policy := security.NewPolicy(cfg.Privacy.BlockedKeywords, cfg.Privacy.RetentionDays, cfg.Privacy.MaskSensitive)
	return security.NewSecureManager(mgr, cipher, policy), s
}

func loadOrCreateSalt(path string) ([]byte, error) {
	if salt, err := os.ReadFile(path); err == nil {
		return salt, nil
	}
	salt, err := security.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
