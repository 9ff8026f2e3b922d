package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GaloisInc/zkinterface-sieve/evaluator"
	"github.com/GaloisInc/zkinterface-sieve/ir"
	"github.com/GaloisInc/zkinterface-sieve/validator"
)

var validateAsProver bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a statement stream for semantic violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := readMessages(args[0])
		if err != nil {
			return err
		}
		var v *validator.Validator
		if validateAsProver {
			v = validator.NewProver()
		} else {
			v = validator.NewVerifier()
		}
		for _, msg := range mem.Messages() {
			v.IngestMessage(msg)
		}
		return report(cmd, v.Violations())
	},
}

func report(cmd *cobra.Command, violations []string) error {
	for _, violation := range violations {
		fmt.Fprintln(cmd.OutOrStdout(), violation)
	}
	if n := len(violations); n > 0 {
		return fmt.Errorf("%d violations found", n)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "No violation.")
	return nil
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Execute a statement stream over its input values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := readMessages(args[0])
		if err != nil {
			return err
		}
		e := evaluator.New()
		for _, msg := range mem.Messages() {
			switch m := msg.(type) {
			case *ir.Instance:
				e.IngestInstance(m)
			case *ir.Witness:
				e.IngestWitness(m)
			case *ir.Relation:
				e.IngestRelation(m)
			}
		}
		return report(cmd, e.Violations())
	},
}

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the semantic checks the validator implements",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), validator.ImplementedChecks)
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateAsProver, "prover", false, "validate witness messages too")
	rootCmd.AddCommand(validateCmd, evaluateCmd, checksCmd)
}
