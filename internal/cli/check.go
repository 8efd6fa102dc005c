package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

// NewCheckCmd evaluates a capability decision from flags. Handy when
// debugging why a request was denied.
func NewCheckCmd() *cobra.Command {
	var (
		actorID  string
		role     string
		cohort   string
		resource string
		op       string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a role capability decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := domain.Actor{ID: actorID, Role: domain.Role(role), Cohort: cohort}
			if err := actor.Validate(); err != nil {
				return err
			}
			err := authz.CheckCapability(actor, authz.Resource(resource), authz.Operation(op))
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "deny: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "allow: %s may %s %s\n", role, op, resource)
			return nil
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "cli", "acting identity")
	cmd.Flags().StringVar(&role, "role", "", "actor role (admin, teacher, student)")
	cmd.Flags().StringVar(&cohort, "cohort", "", "student cohort (class-year)")
	cmd.Flags().StringVar(&resource, "resource", "", "resource family (user, quiz, question, game_session, quiz_result, progress_tracking, leaderboard)")
	cmd.Flags().StringVar(&op, "op", "", "operation (create, read, list, update, delete)")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}
