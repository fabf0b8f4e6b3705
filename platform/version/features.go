package version

// FeaturePath names one versioned behavior of the platform.
type FeaturePath string

// Validation and transformation, per state transition type.
const (
	IdentityCreateStructure  FeaturePath = "validation.identity_create.basic_structure"
	IdentityCreateSignatures FeaturePath = "validation.identity_create.identity_signatures"
	IdentityCreateState      FeaturePath = "validation.identity_create.state"
	IdentityCreateTransform  FeaturePath = "validation.identity_create.transform_into_action"

	IdentityTopUpStructure FeaturePath = "validation.identity_top_up.basic_structure"
	IdentityTopUpState     FeaturePath = "validation.identity_top_up.state"
	IdentityTopUpTransform FeaturePath = "validation.identity_top_up.transform_into_action"

	IdentityUpdateStructure FeaturePath = "validation.identity_update.basic_structure"
	IdentityUpdateState     FeaturePath = "validation.identity_update.state"
	IdentityUpdateTransform FeaturePath = "validation.identity_update.transform_into_action"

	CreditTransferStructure FeaturePath = "validation.identity_credit_transfer.basic_structure"
	CreditTransferState     FeaturePath = "validation.identity_credit_transfer.state"
	CreditTransferTransform FeaturePath = "validation.identity_credit_transfer.transform_into_action"

	CreditWithdrawalStructure FeaturePath = "validation.identity_credit_withdrawal.basic_structure"
	CreditWithdrawalState     FeaturePath = "validation.identity_credit_withdrawal.state"
	CreditWithdrawalTransform FeaturePath = "validation.identity_credit_withdrawal.transform_into_action"

	MasternodeVoteStructure FeaturePath = "validation.masternode_vote.basic_structure"
	MasternodeVoteState     FeaturePath = "validation.masternode_vote.state"
	MasternodeVoteTransform FeaturePath = "validation.masternode_vote.transform_into_action"

	ContractCreateStructure FeaturePath = "validation.data_contract_create.basic_structure"
	ContractCreateState     FeaturePath = "validation.data_contract_create.state"
	ContractCreateTransform FeaturePath = "validation.data_contract_create.transform_into_action"

	ContractUpdateStructure FeaturePath = "validation.data_contract_update.basic_structure"
	ContractUpdateState     FeaturePath = "validation.data_contract_update.state"
	ContractUpdateTransform FeaturePath = "validation.data_contract_update.transform_into_action"

	BatchStructure FeaturePath = "validation.batch.basic_structure"
	BatchState     FeaturePath = "validation.batch.state"
	BatchTransform FeaturePath = "validation.batch.transform_into_action"

	// IdentitySignature covers verification of identity-key signed transitions.
	IdentitySignature FeaturePath = "validation.identity_signature"
)

// Store operation builders, per action family.
const (
	DriveIdentityOperations   FeaturePath = "drive.operations.identity"
	DriveContractOperations   FeaturePath = "drive.operations.data_contract"
	DriveDocumentOperations   FeaturePath = "drive.operations.document"
	DriveTokenOperations      FeaturePath = "drive.operations.token"
	DriveVoteOperations       FeaturePath = "drive.operations.vote"
	DriveWithdrawalOperations FeaturePath = "drive.operations.withdrawal"
)

// Fees, pools and block processing.
const (
	FeesCalculate           FeaturePath = "fees.calculate"
	PoolsProcessBlockFees   FeaturePath = "pools.process_block_fees"
	PoolsPayProposers       FeaturePath = "pools.pay_proposers"
	EngineProcessTransition FeaturePath = "engine.process_transition"
	EngineProtocolUpgrade   FeaturePath = "engine.protocol_upgrade"
)
