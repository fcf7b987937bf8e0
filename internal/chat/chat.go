// Package chat runs the interactive terminal front end over the
// diagnostic session loop.
package chat

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/careloop/medassist/internal/api"
	"github.com/careloop/medassist/internal/catalog"
	"github.com/careloop/medassist/internal/session"
	"github.com/careloop/medassist/internal/suggest"
)

var symptomSplit = regexp.MustCompile(`[,;]+`)

// Chat drives a single terminal conversation. Input and output are
// injected so the loop can be tested against scripted transcripts.
type Chat struct {
	deps session.Deps
	in   *bufio.Scanner
	out  io.Writer
}

// New builds a chat over the given session collaborators.
func New(deps session.Deps, in io.Reader, out io.Writer) *Chat {
	return &Chat{
		deps: deps,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run reads symptom descriptions until the user quits or input ends.
func (c *Chat) Run() error {
	fmt.Fprintln(c.out, "MedAssist symptom checker")
	fmt.Fprintln(c.out, api.Disclaimer)
	fmt.Fprintln(c.out)

	for {
		fmt.Fprintln(c.out, "Describe your symptoms, separated by commas (or 'quit'):")
		line, ok := c.readLine()
		if !ok || isQuit(line) {
			fmt.Fprintln(c.out, "Take care.")
			return nil
		}

		parts := splitSymptoms(line)
		if len(parts) == 0 {
			fmt.Fprintln(c.out, "Please enter at least one symptom.")
			continue
		}

		sess := session.New(c.deps)
		res, err := sess.Submit(parts)
		if err != nil {
			fmt.Fprintf(c.out, "Could not start a check: %v\n", err)
			continue
		}
		if err := c.runRounds(sess, res); err != nil {
			return err
		}
		fmt.Fprintln(c.out)
	}
}

// runRounds walks one session from the first result to a terminal
// state, asking for follow-up symptoms while the confidence target is
// unmet.
func (c *Chat) runRounds(sess *session.Session, res *session.Result) error {
	for {
		c.render(res)

		if res.State != session.StateAwaitingMoreInfo {
			return nil
		}

		fmt.Fprintln(c.out, "Do any of these also apply? Enter numbers (e.g. 1,3), or 'done' for results now:")
		line, ok := c.readLine()
		if !ok || isQuit(line) {
			return nil
		}

		var err error
		if tokens := pickSuggestions(line, res.Suggestions); len(tokens) > 0 {
			res, err = sess.Submit(tokens)
		} else {
			res, err = sess.Finalize()
		}
		if err != nil {
			fmt.Fprintf(c.out, "Could not continue: %v\n", err)
			return nil
		}
	}
}

func (c *Chat) render(res *session.Result) {
	if res.State == session.StateNoMatch {
		fmt.Fprintf(c.out, "None of these symptoms were recognized: %s\n",
			strings.Join(res.InvalidTerms, ", "))
		fmt.Fprintln(c.out, "Try different wording, e.g. 'fever, skin rash'.")
		return
	}

	if len(res.InvalidTerms) > 0 {
		fmt.Fprintf(c.out, "Not recognized (ignored): %s\n", strings.Join(res.InvalidTerms, ", "))
	}
	fmt.Fprintf(c.out, "Symptoms considered: %s\n", displayList(res.ValidSymptoms))
	fmt.Fprintf(c.out, "Severity: %s (%s)\n", res.Severity.Level, res.Severity.Level.Advice())

	fmt.Fprintln(c.out, "Possible conditions:")
	for i, cand := range res.Candidates {
		fmt.Fprintf(c.out, "  %d. %s (%.1f%%)\n", i+1, cand.Condition, cand.Confidence)
		fmt.Fprintf(c.out, "     %s\n", cand.Description)
	}

	switch res.State {
	case session.StateAwaitingMoreInfo:
		for i, s := range res.Suggestions {
			fmt.Fprintf(c.out, "  [%d] %s\n", i+1, s.Display)
		}
	case session.StateFinalized:
		if res.BestEffort {
			fmt.Fprintln(c.out, "Confidence stayed below target; showing the best available match.")
		}
		if len(res.Candidates) > 0 && len(res.Candidates[0].Precautions) > 0 {
			fmt.Fprintf(c.out, "Precautions for %s:\n", res.Candidates[0].Condition)
			for _, p := range res.Candidates[0].Precautions {
				fmt.Fprintf(c.out, "  - %s\n", p)
			}
		}
		if res.Diet != nil {
			fmt.Fprintf(c.out, "Suggested meal plan (%s): %s (%d kcal, %.0fg protein, %.0fg carbs, %.0fg fat)\n",
				res.Diet.ChronicCondition, res.Diet.MealPlan, res.Diet.Calories,
				res.Diet.ProteinG, res.Diet.CarbsG, res.Diet.FatsG)
		}
	}
}

func (c *Chat) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "bye", "q":
		return true
	}
	return false
}

func splitSymptoms(line string) []string {
	var out []string
	for _, p := range symptomSplit.Split(line, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pickSuggestions maps a "1,3" style answer to suggestion tokens.
// Anything non-numeric or out of range is ignored.
func pickSuggestions(line string, suggestions []suggest.Suggestion) []string {
	var tokens []string
	for _, p := range symptomSplit.Split(line, -1) {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > len(suggestions) {
			continue
		}
		tokens = append(tokens, suggestions[n-1].Token)
	}
	return tokens
}

func displayList(tokens []string) string {
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = catalog.DisplayName(t)
	}
	return strings.Join(names, ", ")
}
