package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GaloisInc/zkinterface-sieve/gateset"
	"github.com/GaloisInc/zkinterface-sieve/ir"
)

var (
	reduceOutput  string
	reduceGateSet string
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [file]",
	Short: "Rewrite relations to use only an allowed gate set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		allowed, err := parseGateSet(reduceGateSet)
		if err != nil {
			return err
		}
		mem, err := readMessages(args[0])
		if err != nil {
			return err
		}
		out, closer, err := openStreamSink(reduceOutput)
		if err != nil {
			return err
		}
		defer closer.Close()
		for _, msg := range mem.Messages() {
			switch m := msg.(type) {
			case *ir.Instance:
				err = out.PushInstance(m)
			case *ir.Witness:
				err = out.PushWitness(m)
			case *ir.Relation:
				var reduced *ir.Relation
				reduced, err = gateset.Reduce(m, allowed)
				if err == nil {
					err = out.PushRelation(reduced)
				}
			}
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func parseGateSet(spec string) (ir.GateSet, error) {
	switch spec {
	case "arithmetic":
		return ir.ArithmeticGateSet(), nil
	case "boolean":
		return ir.BooleanGateSet(), nil
	}
	kindByName := map[string]ir.GateKind{
		"add":         ir.KindAdd,
		"mul":         ir.KindMul,
		"addconstant": ir.KindAddConstant,
		"mulconstant": ir.KindMulConstant,
		"xor":         ir.KindXor,
		"and":         ir.KindAnd,
		"not":         ir.KindNot,
	}
	var kinds []ir.GateKind
	for _, name := range strings.Split(spec, ",") {
		kind, ok := kindByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return ir.GateSet{}, fmt.Errorf("unknown gate name %q", name)
		}
		kinds = append(kinds, kind)
	}
	return ir.NewGateSet(kinds...), nil
}

func init() {
	reduceCmd.Flags().StringVarP(&reduceOutput, "output", "o", "-", "output file")
	reduceCmd.Flags().StringVar(&reduceGateSet, "gate-set", "arithmetic",
		"target gate set: arithmetic, boolean, or a comma separated gate list")
	rootCmd.AddCommand(reduceCmd)
}
