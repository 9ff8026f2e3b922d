package main

import (
	"github.com/spf13/cobra"

	"github.com/GaloisInc/zkinterface-sieve/ir"
)

var (
	sampleOutput    string
	sampleNoWitness bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Emit the right-triangle sample statement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, closer, err := openStreamSink(sampleOutput)
		if err != nil {
			return err
		}
		defer closer.Close()
		if err := out.PushInstance(ir.SampleInstance()); err != nil {
			return err
		}
		if !sampleNoWitness {
			if err := out.PushWitness(ir.SampleWitness()); err != nil {
				return err
			}
		}
		return out.PushRelation(ir.SampleRelation())
	},
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "-", "output file")
	sampleCmd.Flags().BoolVar(&sampleNoWitness, "no-witness", false, "omit the witness message")
	rootCmd.AddCommand(sampleCmd)
}
