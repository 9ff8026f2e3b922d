package validator

import "fmt"

// ImplementedChecks is a human-readable description of the semantic and
// syntactic checks this validator performs. It has no structural role.
const ImplementedChecks = `
Here is the list of implemented semantic/syntactic checks:

Header Validation
 - Ensure that each field characteristic is strictly greater than 1.
 - Ensure that each field degree is exactly 1.
 - Ensure that the version string has the correct format (matches "^\d+\.\d+\.\d+$").
 - Ensure that the profile name is either arithmetic or boolean.
     - If boolean, checks that every field characteristic is exactly 2.
 - Ensure header messages are coherent.
     - Profile names should be identical.
     - Versions should be identical.
     - Field characteristics and field degrees should be the same.

Inputs Validation (Instances / Witnesses)
 - Ensure that Instance gates are given a value in Instance messages.
 - Ensure that Witness gates are given a value in Witness messages (prover only).
 - Ensure that no unused Instance or Witness values are given.
 - Ensure that every value encodes an element of its field. For degree-1
   fields this means the encoded value is strictly smaller than the field
   characteristic.

Gates Validation
 - Ensure that gates used are coherent with the profile.
   - Not/And/Xor are not allowed with the arithmetic profile.
   - Add/AddConstant/Mul/MulConstant are not allowed with the boolean profile.
 - Ensure constants given in AddConstant/MulConstant are actual field elements.
 - Ensure input wires of gates map to a live, previously set wire.
 - Enforce single static assignment: a wire id is used at most once as an
   output wire while it is live.
 - Ensure Free ranges only free live wires, and New ranges only reserve
   unused ones.
 - Ensure Call sites match the declared function signature (per-type input,
   output, instance and witness counts).
`

// PrintImplementedChecks writes the checks listing to standard output.
func PrintImplementedChecks() {
	fmt.Print(ImplementedChecks)
}
