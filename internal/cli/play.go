package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/engine"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays a quiz definition file in the terminal.
func NewPlayCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz definition file in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(file)
			if err != nil {
				return err
			}
			rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
			return playTerminal(def, cmd.InOrStdin(), cmd.OutOrStdout(), rnd)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "quiz definition JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadDefinition(path string) (domain.QuizDefinition, error) {
	var def domain.QuizDefinition
	data, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("parse %s: %w", path, err)
	}
	return def, nil
}

var errInputEnded = errors.New("input ended before the quiz was finished")

// playTerminal runs one or more rounds of def, reading 1-based choices
// from in. Options are listed in shuffled order.
func playTerminal(def domain.QuizDefinition, in io.Reader, out io.Writer, rnd engine.RandomSource) error {
	session, err := engine.NewSession(def)
	if err != nil {
		return err
	}
	lines := bufio.NewScanner(in)

	fmt.Fprintf(out, "%s\n", def.Title)
	if def.IntroText != "" {
		fmt.Fprintf(out, "%s\n", def.IntroText)
	}
	for {
		for !session.Completed() {
			q, err := session.CurrentQuestion()
			if err != nil {
				return err
			}
			progress := session.Progress()
			order := engine.Permutation(len(q.Options), rnd)
			fmt.Fprintf(out, "\n[%d/%d] %s\n", progress.Answered+1, progress.Total, q.Text)
			for i, idx := range order {
				fmt.Fprintf(out, "  %d) %s\n", i+1, q.Options[idx].Label)
			}
			for {
				fmt.Fprint(out, "> ")
				if !lines.Scan() {
					return errInputEnded
				}
				n, err := strconv.Atoi(strings.TrimSpace(lines.Text()))
				if err != nil || n < 1 || n > len(order) {
					fmt.Fprintf(out, "enter a number between 1 and %d\n", len(order))
					continue
				}
				if _, err := session.Answer(order[n-1]); err != nil {
					return err
				}
				break
			}
		}

		res, err := session.Result()
		if err != nil {
			return err
		}
		printResult(out, res)

		fmt.Fprint(out, "\nplay again? [y/N] ")
		if !lines.Scan() || !strings.EqualFold(strings.TrimSpace(lines.Text()), "y") {
			return lines.Err()
		}
		session = session.Restart()
	}
}

func printResult(out io.Writer, res domain.ResultDefinition) {
	fmt.Fprintf(out, "\nYour type: %s\n%s\n", res.Title, res.Description)
	if cta := res.CallToAction; cta != nil && cta.Label != "" && cta.URL != "" {
		fmt.Fprintf(out, "%s: %s\n", cta.Label, cta.URL)
	}
	if offer := res.SecondaryOffer; offer != nil && offer.URL != "" {
		prompt := offer.PromptText
		if prompt == "" {
			prompt = "More"
		}
		fmt.Fprintf(out, "%s %s\n", prompt, offer.URL)
	}
}
