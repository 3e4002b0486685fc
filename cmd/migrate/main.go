package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for the adoption API schema",
	Long: `Applies or reverts the embedded PostgreSQL migrations.
The connection string is read from --dsn or POSTGRES_DSN.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := databaseURL()
		if err != nil {
			return err
		}
		if err := migrations.Up(dsn); err != nil {
			return err
		}
		return printVersion(cmd, dsn)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert migrations",
	Long: `Reverts migrations. WARNING: this can drop adoption data.

Examples:
  # Revert the latest migration
  migrate down --num-steps 1 --yes

  # Revert everything
  migrate down --yes`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := databaseURL()
		if err != nil {
			return err
		}
		steps, err := cmd.Flags().GetUint("num-steps")
		if err != nil {
			return fmt.Errorf("failed to get num-steps flag: %w", err)
		}
		if err := confirmDown(cmd, steps); err != nil {
			return err
		}
		if err := migrations.Down(dsn, int(steps)); err != nil {
			return err
		}
		return printVersion(cmd, dsn)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := databaseURL()
		if err != nil {
			return err
		}
		return printVersion(cmd, dsn)
	},
}

func init() {
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL connection URL (defaults to POSTGRES_DSN)")
	if err := viper.BindPFlag("postgres_dsn", rootCmd.PersistentFlags().Lookup("dsn")); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()

	downCmd.Flags().UintP("num-steps", "n", 0, "Number of migrations to revert (0 = all)")
	downCmd.Flags().BoolP("yes", "y", false, "Answer yes to the confirmation prompt")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func databaseURL() (string, error) {
	dsn := strings.TrimSpace(viper.GetString("postgres_dsn"))
	if dsn == "" {
		return "", fmt.Errorf("POSTGRES_DSN not set; cannot run migrations")
	}
	return dsn, nil
}

func confirmDown(cmd *cobra.Command, steps uint) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return nil
	}
	prompt := "WARNING: this reverts ALL migrations and drops every table. Continue?"
	if steps > 0 {
		prompt = fmt.Sprintf("WARNING: this reverts %d migration(s). Continue?", steps)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("migration cancelled by user")
}

func printVersion(cmd *cobra.Command, dsn string) error {
	version, dirty, err := migrations.Version(dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
