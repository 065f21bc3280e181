package processor

import (
	"fmt"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/vesting"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

type Kind uint8

const (
	KindCreateVestingType Kind = iota
	KindCreateVestingAccount
	KindWithdrawFromVesting
	KindWithdrawExcessiveFromPool
	KindChangeVestingTypeSchedule
	KindCreateMultisig
	KindOpenDevesting
	KindSignDevesting
)

var kindNames = [...]string{
	KindCreateVestingType:         "create_vesting_type",
	KindCreateVestingAccount:      "create_vesting_account",
	KindWithdrawFromVesting:       "withdraw_from_vesting",
	KindWithdrawExcessiveFromPool: "withdraw_excessive_from_pool",
	KindChangeVestingTypeSchedule: "change_vesting_type_schedule",
	KindCreateMultisig:            "create_multisig",
	KindOpenDevesting:             "open_devesting",
	KindSignDevesting:             "sign_devesting",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Instruction is one ledger operation together with the accounts it reads
// and writes.
type Instruction interface {
	Kind() Kind
	execute(tx *txn) error
}

// CreateVestingType initialises a pool type record and hands the token
// pool over to the pool authority.
type CreateVestingType struct {
	Administrator crypto.Identity
	PoolType      crypto.Identity
	TokenPool     crypto.Identity
	Schedule      vesting.Schedule
}

// CreateVestingAccount grants TotalTokens of a pool type to the owner of
// TokenAccount.
type CreateVestingAccount struct {
	Administrator crypto.Identity
	PoolType      crypto.Identity
	Grant         crypto.Identity
	TokenAccount  crypto.Identity
	TokenPool     crypto.Identity
	TotalTokens   uint64
}

// WithdrawFromVesting pays unlocked grant tokens to the grant's token
// account. Anyone may submit it.
type WithdrawFromVesting struct {
	PoolType     crypto.Identity
	Grant        crypto.Identity
	TokenAccount crypto.Identity
	TokenPool    crypto.Identity
	Amount       uint64
}

// WithdrawExcessiveFromPool pays pool tokens not locked by any grant to
// Destination.
type WithdrawExcessiveFromPool struct {
	Administrator crypto.Identity
	PoolType      crypto.Identity
	TokenPool     crypto.Identity
	Destination   crypto.Identity
	Amount        uint64
}

type ChangeVestingTypeSchedule struct {
	Administrator crypto.Identity
	PoolType      crypto.Identity
	Schedule      vesting.Schedule
}

// CreateMultisig copies an M-of-N multisig configuration into the
// devesting policy of a pool type. Policy must be the address derived from
// PoolType, so a pool type has at most one policy.
type CreateMultisig struct {
	Administrator crypto.Identity
	PoolType      crypto.Identity
	Multisig      crypto.Identity
	Policy        crypto.Identity
}

// OpenDevesting starts collecting approvals to terminate Grant. Progress
// must be the address derived from Grant.
type OpenDevesting struct {
	Signer   crypto.Identity
	PoolType crypto.Identity
	Policy   crypto.Identity
	Grant    crypto.Identity
	Progress crypto.Identity
}

// SignDevesting records Signer's approval and closes Grant once the policy
// threshold is reached.
type SignDevesting struct {
	Signer   crypto.Identity
	PoolType crypto.Identity
	Policy   crypto.Identity
	Grant    crypto.Identity
	Progress crypto.Identity
}

func (CreateVestingType) Kind() Kind         { return KindCreateVestingType }
func (CreateVestingAccount) Kind() Kind      { return KindCreateVestingAccount }
func (WithdrawFromVesting) Kind() Kind       { return KindWithdrawFromVesting }
func (WithdrawExcessiveFromPool) Kind() Kind { return KindWithdrawExcessiveFromPool }
func (ChangeVestingTypeSchedule) Kind() Kind { return KindChangeVestingTypeSchedule }
func (CreateMultisig) Kind() Kind            { return KindCreateMultisig }
func (OpenDevesting) Kind() Kind             { return KindOpenDevesting }
func (SignDevesting) Kind() Kind             { return KindSignDevesting }

// Encode writes the kind byte followed by the instruction's fields.
func Encode(ins Instruction) ([]byte, error) {
	body, err := fixed.Marshal(ins)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ins.Kind(), err)
	}
	return append([]byte{byte(ins.Kind())}, body...), nil
}

func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInstruction)
	}
	kind := Kind(data[0])
	var ins Instruction
	var err error
	switch kind {
	case KindCreateVestingType:
		ins, err = decodeAs[CreateVestingType](data[1:])
	case KindCreateVestingAccount:
		ins, err = decodeAs[CreateVestingAccount](data[1:])
	case KindWithdrawFromVesting:
		ins, err = decodeAs[WithdrawFromVesting](data[1:])
	case KindWithdrawExcessiveFromPool:
		ins, err = decodeAs[WithdrawExcessiveFromPool](data[1:])
	case KindChangeVestingTypeSchedule:
		ins, err = decodeAs[ChangeVestingTypeSchedule](data[1:])
	case KindCreateMultisig:
		ins, err = decodeAs[CreateMultisig](data[1:])
	case KindOpenDevesting:
		ins, err = decodeAs[OpenDevesting](data[1:])
	case KindSignDevesting:
		ins, err = decodeAs[SignDevesting](data[1:])
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidInstruction, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInstruction, kind, err)
	}
	return ins, nil
}

func decodeAs[T Instruction](data []byte) (Instruction, error) {
	var ins T
	if err := fixed.Unmarshal(data, &ins); err != nil {
		return nil, err
	}
	return ins, nil
}
