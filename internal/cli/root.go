package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	addr       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load() // optional .env; absent in most deployments

	envAddr := os.Getenv("HTTP_ADDR")
	if envAddr == "" {
		envAddr = ":8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "quizforge",
		Short: "Quiz platform API: timed MCQ quizzes, scoring and leaderboards",
	}

	cmd.PersistentFlags().StringVar(&addr, "addr", envAddr, "address to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newServeCmd(&configPath, &addr))
	cmd.AddCommand(newMigrateCmd(&configPath))
	return cmd
}
