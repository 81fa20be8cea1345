// Package nearapi declares the NEAR host functions a compiled contract may
// reference. The list mirrors the runtime's VM logic surface; it is handed
// verbatim to the bytecode compiler, which rejects any reference outside it.
package nearapi

// hostFunctions is the complete, ordered catalog. Order is meaningless to the
// runtime but must stay stable so repeated builds feed the compiler identical
// input.
var hostFunctions = []string{
	// Registers
	"read_register",
	"register_len",
	"write_register",

	// Context / account queries
	"current_account_id",
	"signer_account_id",
	"signer_account_pk",
	"predecessor_account_id",
	"input",
	"block_height",
	"block_timestamp",
	"epoch_height",
	"storage_usage",

	// Economics
	"account_balance",
	"account_locked_balance",
	"attached_deposit",
	"prepaid_gas",
	"used_gas",

	// Math / cryptography
	"random_seed",
	"sha256",
	"keccak256",
	"keccak512",
	"ripemd160",
	"ecrecover",
	"ed25519_verify",
	"alt_bn128_g1_multiexp",
	"alt_bn128_g1_sum",
	"alt_bn128_pairing_check",

	// Miscellaneous
	"value_return",
	"panic",
	"panic_utf8",
	"log",
	"log_utf8",
	"log_utf16",
	"abort",

	// Promises
	"promise_create",
	"promise_then",
	"promise_and",
	"promise_batch_create",
	"promise_batch_then",
	"promise_results_count",
	"promise_result",
	"promise_return",

	// Promise batch actions
	"promise_batch_action_create_account",
	"promise_batch_action_deploy_contract",
	"promise_batch_action_function_call",
	"promise_batch_action_function_call_weight",
	"promise_batch_action_transfer",
	"promise_batch_action_stake",
	"promise_batch_action_add_key_with_full_access",
	"promise_batch_action_add_key_with_function_call",
	"promise_batch_action_delete_key",
	"promise_batch_action_delete_account",

	// Storage
	"storage_write",
	"storage_read",
	"storage_remove",
	"storage_has_key",
	"storage_iter_prefix",
	"storage_iter_range",
	"storage_iter_next",

	// Validator / staking queries
	"validator_stake",
	"validator_total_stake",
}

// HostFunctions returns the catalog of host-callable function names, in
// canonical order. The returned slice is a copy; callers may mutate it.
func HostFunctions() []string {
	out := make([]string, len(hostFunctions))
	copy(out, hostFunctions)
	return out
}
