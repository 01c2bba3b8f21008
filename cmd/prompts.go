package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/termdojo/internal/store"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage question prompts and their instruction logs",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		prompts, err := s.PromptRepo().List(ctx)
		if err != nil {
			return err
		}
		selected, err := s.PromptRepo().SelectedID(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range prompts {
			mark := " "
			if p.ID == selected {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %-4d %s\n", mark, p.ID, p.Title)
		}
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a prompt (default: the selected one) with its instructions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.PromptRepo()
		id, err := promptArg(cmd, repo, args)
		if err != nil {
			return err
		}
		p, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		logs, err := repo.ListInstructions(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(out, "ID:     %d\n", p.ID)
		fmt.Fprintf(out, "Title:  %s\n", p.Title)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, p.Content)
		fmt.Fprintln(out, sep)
		if len(logs) == 0 {
			fmt.Fprintln(out, "(no instructions)")
			return nil
		}
		for _, l := range logs {
			fmt.Fprintf(out, "[%d] %s  %s\n", l.ID, l.CreatedAt.Local().Format("2006-01-02 15:04"), l.Message)
		}
		return nil
	},
}

var promptsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, err := contentFlag(cmd)
		if err != nil {
			return err
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.PromptRepo().Create(cmd.Context(), title, content)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created prompt %d %q\n", p.ID, p.Title)
		return nil
	},
}

var promptsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a prompt's title or content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		content, err := contentFlag(cmd)
		if err != nil {
			return err
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		p, err := s.PromptRepo().Get(ctx, id)
		if err != nil {
			return err
		}
		title := p.Title
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		if content == "" && !cmd.Flags().Changed("content") {
			content = p.Content
		}

		if err := s.PromptRepo().Update(ctx, id, title, content); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated prompt %d\n", id)
		return nil
	},
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a prompt and its instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.PromptRepo().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted prompt %d\n", id)
		return nil
	},
}

var promptsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Use a prompt for question generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.PromptRepo().Select(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Selected prompt %d\n", id)
		return nil
	},
}

var instructCmd = &cobra.Command{
	Use:   "instruct",
	Short: "Manage a prompt's instruction log",
}

var instructAddCmd = &cobra.Command{
	Use:   "add <message>",
	Short: "Append an instruction to a prompt (default: the selected one)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.PromptRepo()
		id, err := promptFlag(cmd, repo)
		if err != nil {
			return err
		}
		in, err := repo.AppendInstruction(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added instruction %d to prompt %d\n", in.ID, id)
		return nil
	},
}

var instructListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a prompt's instructions, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.PromptRepo()
		id, err := promptFlag(cmd, repo)
		if err != nil {
			return err
		}
		logs, err := repo.ListInstructions(cmd.Context(), id)
		if err != nil {
			return err
		}
		for _, l := range logs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-5d %s\n", l.ID, l.Message)
		}
		return nil
	},
}

var instructDeleteCmd = &cobra.Command{
	Use:   "delete <instruction-id>",
	Short: "Delete one instruction from a prompt's log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.PromptRepo()
		promptID, err := promptFlag(cmd, repo)
		if err != nil {
			return err
		}
		if err := repo.DeleteInstruction(cmd.Context(), promptID, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted instruction %d\n", id)
		return nil
	},
}

// contentFlag returns --content, or the contents of --content-file.
func contentFlag(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	path, _ := cmd.Flags().GetString("content-file")
	if path == "" {
		return content, nil
	}
	if content != "" {
		return "", fmt.Errorf("--content and --content-file are mutually exclusive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read content file: %w", err)
	}
	return string(data), nil
}

// promptArg resolves an optional positional prompt ID to the selected
// prompt when absent.
func promptArg(cmd *cobra.Command, repo store.PromptRepo, args []string) (int64, error) {
	if len(args) > 0 {
		return parseID(args[0])
	}
	return repo.SelectedID(cmd.Context())
}

// promptFlag resolves --prompt, defaulting to the selected prompt.
func promptFlag(cmd *cobra.Command, repo store.PromptRepo) (int64, error) {
	id, _ := cmd.Flags().GetInt64("prompt")
	if id > 0 {
		return id, nil
	}
	return repo.SelectedID(cmd.Context())
}

func init() {
	for _, c := range []*cobra.Command{promptsAddCmd, promptsEditCmd} {
		c.Flags().String("title", "", "Prompt title")
		c.Flags().String("content", "", "Prompt template text")
		c.Flags().String("content-file", "", "Read the prompt template from a file")
	}

	instructCmd.PersistentFlags().Int64P("prompt", "p", 0, "Prompt ID (default: the selected prompt)")
	instructCmd.AddCommand(instructAddCmd)
	instructCmd.AddCommand(instructListCmd)
	instructCmd.AddCommand(instructDeleteCmd)

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsAddCmd)
	promptsCmd.AddCommand(promptsEditCmd)
	promptsCmd.AddCommand(promptsDeleteCmd)
	promptsCmd.AddCommand(promptsSelectCmd)
	promptsCmd.AddCommand(instructCmd)
}
