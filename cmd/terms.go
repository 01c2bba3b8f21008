package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/importer"
	"github.com/abhisek/termdojo/internal/store"
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Manage registered terms",
}

var termsAddCmd = &cobra.Command{
	Use:   "add <word>",
	Short: "Register a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		t, err := s.TermRepo().Create(cmd.Context(), args[0], tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %q (id %d, tag %s, proficiency %d)\n",
			t.Word, t.ID, t.Tag, t.Proficiency)
		return nil
	},
}

var termsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")
		sort, _ := cmd.Flags().GetString("sort")
		switch store.TermSort(sort) {
		case store.SortNewest, store.SortWord, store.SortProficiency:
		default:
			return fmt.Errorf("unknown sort %q (want newest, word or proficiency)", sort)
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		terms, err := s.TermRepo().List(cmd.Context(), store.TermFilter{Tags: tags, Sort: store.TermSort(sort)})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(terms) == 0 {
			fmt.Fprintln(out, "No terms registered.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-28s  %-16s  %5s\n", "ID", "Word", "Tag", "Prof")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, t := range terms {
			fmt.Fprintf(out, "%-5d  %-28s  %-16s  %5d\n",
				t.ID, truncate(t.Word, 28), truncate(t.Tag, 16), t.Proficiency)
		}
		return nil
	},
}

var termsTagCmd = &cobra.Command{
	Use:   "tag <id> <tag>",
	Short: "Change a term's tag (blank resets it to \"" + domain.DefaultTag + "\")",
	Args:  cobra.ExactArgs(2),
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

		if err := s.TermRepo().UpdateTag(cmd.Context(), id, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated term %d\n", id)
		return nil
	},
}

var termsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a term",
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

		if err := s.TermRepo().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted term %d\n", id)
		return nil
	},
}

var termsTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		tags, err := s.TermRepo().DistinctTags(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var termsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Register terms from a spreadsheet (column A word, column B tag)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		noHeader, _ := cmd.Flags().GetBool("no-header")
		tag, _ := cmd.Flags().GetString("tag")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := importer.Import(cmd.Context(), s.TermRepo(), importer.Options{
			Path:       args[0],
			Sheet:      sheet,
			SkipHeader: !noHeader,
			DefaultTag: tag,
		})
		if res != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d rows: %d created, %d skipped\n", res.Processed, res.Created, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
		}
		return err
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func init() {
	termsAddCmd.Flags().StringP("tag", "t", "", "Tag for the term (default \""+domain.DefaultTag+"\")")

	termsListCmd.Flags().StringSliceP("tag", "t", nil, "Only list terms with these tags")
	termsListCmd.Flags().StringP("sort", "s", string(store.SortNewest), "Sort order: newest, word or proficiency")

	termsImportCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	termsImportCmd.Flags().Bool("no-header", false, "Treat the first row as data")
	termsImportCmd.Flags().StringP("tag", "t", "", "Tag for rows without one")

	termsCmd.AddCommand(termsAddCmd)
	termsCmd.AddCommand(termsListCmd)
	termsCmd.AddCommand(termsTagCmd)
	termsCmd.AddCommand(termsDeleteCmd)
	termsCmd.AddCommand(termsTagsCmd)
	termsCmd.AddCommand(termsImportCmd)
}
