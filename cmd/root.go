package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/termdojo/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "termdojo",
	Short: "AI vocabulary dojo for the terminal",
	Long:  "termdojo: register terms, tag them and practise them with AI-generated quiz questions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides TERMDOJO_DB_DSN)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides TERMDOJO_CONFIG)")

	rootCmd.AddCommand(termsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// runApp launches the interactive dojo.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(cmd.Context(), app.Deps{
		Engine:              rt.engine,
		Terms:               rt.store.TermRepo(),
		Stats:               rt.store.StudyLogRepo(),
		DefaultMaxQuestions: rt.cfg.Dojo.MaxQuestions,
	})
}
