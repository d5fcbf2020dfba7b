// Command matchctl is the operator CLI for the shipment matcher: inspect OCR
// variants, run manual searches, backfill documents and manage API keys.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configFile string
	driver     string
	sqlitePath string
	timeout    time.Duration

	// search flags
	remoteAddr string
	credential string
	userID     string
	companyID  string

	// hash-key flags
	keyID   string
	keyRole string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Operator tooling for OCR-tolerant shipment matching",
	Long: `matchctl works against the same shipment store the services use.

Store selection follows the service config (CONFIG_FILE, STORE_DRIVER, ...);
--driver and --sqlite override it for one invocation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var variantsCmd = &cobra.Command{
	Use:   "variants <token>",
	Short: "Print the search candidates an OCR-read token expands to",
	Args:  cobra.ExactArgs(1),
	RunE:  runVariants,
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Run a manual search against the local store or a remote match service",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Backfill shipment documents from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the shipment document schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [secret]",
	Short: "Hash an API key secret for the key file; generates one when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashKey,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Store driver override: postgres, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "SQLite database path override")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	searchCmd.Flags().StringVar(&remoteAddr, "addr", "", "Match service gRPC address; empty searches the local store")
	searchCmd.Flags().StringVar(&credential, "key", os.Getenv("MATCH_API_KEY"), "API key <keyID>.<secret> for --addr")
	searchCmd.Flags().StringVar(&userID, "user", "", "User ID to search as in local mode (default: random)")
	searchCmd.Flags().StringVar(&companyID, "company", "", "Company ID to search as in local mode")

	hashKeyCmd.Flags().StringVar(&keyID, "id", "", "Key ID (required)")
	hashKeyCmd.Flags().StringVar(&userID, "user", "", "User ID the key authenticates (required)")
	hashKeyCmd.Flags().StringVar(&companyID, "company", "", "Company ID of the key")
	hashKeyCmd.Flags().StringVar(&keyRole, "role", "operator", "Role of the key")
	hashKeyCmd.MarkFlagRequired("id")
	hashKeyCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(variantsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashKeyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds one command by --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
