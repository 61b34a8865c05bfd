package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type ValidateCmd struct {
	services ServiceProvider
}

func NewValidateCmd(services ServiceProvider) *cobra.Command {
	vc := &ValidateCmd{services: services}
	return &cobra.Command{
		Use:   "validate <description>",
		Short: "Check whether a business description is clear enough to analyze",
		Args:  cobra.MinimumNArgs(1),
		RunE:  vc.run,
	}
}

func (vc *ValidateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, release, err := vc.services(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.Validator.Validate(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to validate description: %w", err)
	}

	verdict := "valid"
	if !res.Valid {
		verdict = "invalid"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Description is %s.\n%s\n", verdict, res.Feedback)
	return nil
}
