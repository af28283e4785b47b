package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Work through a resumable subject session",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <learner> <subject>",
	Short: "Start today's session or resume the cached one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.engine.StartOrResumeSession(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printSession(s)
		return nil
	},
}

var sessionAnswerCmd = &cobra.Command{
	Use:   "answer <learner> <subject> <answer>",
	Short: "Answer the current session question",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.AnswerSession(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if res.Correct {
			fmt.Println("✓ Correct")
		} else {
			fmt.Println("✗ Not quite")
		}
		printSession(res.Session)
		return nil
	},
}

var sessionProgressCmd = &cobra.Command{
	Use:   "progress <learner> <subject> <index> <score>",
	Short: "Record the learner's position in the session",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[2], err)
		}
		score, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[3], err)
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.engine.UpdateSessionProgress(cmd.Context(), args[0], args[1],
			session.Progress{CurrentIndex: index, Score: score})
		if err != nil {
			return err
		}
		printSession(s)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <learner> <subject>",
	Short: "Drop today's session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.ClearSession(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

func printSession(s *session.Session) {
	fmt.Printf("%s / %s  question %d of %d  score %d\n",
		s.LearnerID, s.SubjectID, min(s.CurrentIndex+1, len(s.Questions)), len(s.Questions), s.Score)
	q, ok := s.Current()
	if !ok {
		if len(s.Questions) == 0 {
			fmt.Println("No questions available for this subject and grade.")
		} else {
			fmt.Println("Session complete.")
		}
		return
	}
	fmt.Println()
	fmt.Println(q.Item.Prompt)
	printOptions(q.Item, "  ")
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionAnswerCmd)
	sessionCmd.AddCommand(sessionProgressCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
