package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/proficiency"
	"github.com/abhisek/termdojo/internal/quizgen"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <term-id|word>",
	Short: "Generate one question and grade yourself",
	Long: `Generate a single question for a word.

When the argument is the ID of a registered term, the explanation is
revealed on Enter and your answer (good, partial or miss) adjusts the
term's proficiency by +20, +10 or -10.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey, _ := cmd.Flags().GetString("api-key")
		model, _ := cmd.Flags().GetString("model")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		var term *domain.Term
		word := args[0]
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			term, err = rt.store.TermRepo().Get(ctx, id)
			if err != nil {
				return err
			}
			word = term.Word
		}

		q, err := rt.generator.Generate(ctx, quizgen.Request{Word: word, Credential: apiKey, Model: model})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printQuestion(out, word, q)

		in := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(out, "\nPress Enter to reveal the explanation...")
		in.Scan()
		fmt.Fprintf(out, "\n%s\n", q.Explanation)

		if term == nil {
			return nil
		}

		for {
			fmt.Fprint(out, "\nHow did you do? [good/partial/miss]: ")
			if !in.Scan() {
				return in.Err()
			}
			delta, err := proficiency.LevelDelta(proficiency.Level(in.Text()))
			if err != nil {
				fmt.Fprintln(out, domain.Message(err))
				continue
			}
			p, err := rt.proficiency.ApplyDelta(ctx, term.ID, delta)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Proficiency %d → %d\n", term.Proficiency, p)
			return nil
		}
	},
}

func printQuestion(w io.Writer, word string, q *quizgen.Question) {
	fmt.Fprintf(w, "%s\n%s\n\n%s\n", word, strings.Repeat("─", len([]rune(word))), q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(w, "  %d. %s\n", i+1, opt)
	}
}

func init() {
	quizCmd.Flags().String("api-key", "", "API key for this request (overrides the configured key)")
	quizCmd.Flags().String("model", "", "Model for this request (overrides the configured model)")
}
