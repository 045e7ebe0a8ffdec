package processor

import (
	"github.com/ethereum/go-ethereum/common"
	gethvm "github.com/ethereum/go-ethereum/core/vm"

	"github.com/openevm/corevm/tosca"
)

// runPrecompiled dispatches a call into the precompiled contract range
// (spec §6: "precompile bodies themselves stay out of scope; tosca.
// IsPrecompiledContract dispatches by address range only"). The bodies
// here are go-ethereum's own, reused rather than reimplemented, since
// their correctness is consensus-critical and out of this module's scope
// to reproduce.
func runPrecompiled(revision tosca.Revision, input tosca.Data, address tosca.Address, gas tosca.Gas) (tosca.CallResult, bool) {
	contract, ok := precompiledContractFor(address, revision)
	if !ok {
		return tosca.CallResult{}, false
	}
	requiredGas := tosca.Gas(contract.RequiredGas(input))
	if gas < requiredGas {
		return tosca.CallResult{Success: false}, true
	}
	output, err := contract.Run(input)
	return tosca.CallResult{
		Success: err == nil,
		Output:  output,
		GasLeft: gas - requiredGas,
	}, true
}

func precompiledContractFor(address tosca.Address, revision tosca.Revision) (gethvm.PrecompiledContract, bool) {
	if !tosca.IsPrecompiledContract(address) {
		return nil, false
	}
	var set map[common.Address]gethvm.PrecompiledContract
	switch {
	case revision.IsAtLeast(tosca.R13_Cancun):
		set = gethvm.PrecompiledContractsCancun
	case revision.IsAtLeast(tosca.R09_Berlin):
		set = gethvm.PrecompiledContractsBerlin
	default:
		set = gethvm.PrecompiledContractsIstanbul
	}
	contract, ok := set[common.Address(address)]
	return contract, ok
}
