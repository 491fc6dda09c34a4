package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "museq song catalog maintenance",
	Long: `catalogctl maintains the museq song catalog in Redis.

Songs enter the catalog either by scanning a local music directory for
tagged audio files, or by fetching a JSON listing from a remote catalog
endpoint. The queue server reads the catalog; it never writes it.`,
	SilenceUsage: true,
}

var (
	redisAddr string
	redisDB   int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "redis address of the catalog store")
	rootCmd.PersistentFlags().IntVar(&redisDB, "db", 0, "redis database of the catalog store")
}

// newLogger builds the CLI logger: the server's development setup with
// uncolored level names.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	return zap.Must(cfg.Build())
}

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
