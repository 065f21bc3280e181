// Package rent computes the storage deposit an account needs to be exempt
// from rent collection.
package rent

// AccountStorageOverhead is charged on top of an account's data length.
const AccountStorageOverhead = 128

const (
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
)

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

func Default() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance is the deposit that keeps an account of dataLen bytes
// exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	perYear := uint64(AccountStorageOverhead+dataLen) * r.LamportsPerByteYear
	return uint64(float64(perYear) * r.ExemptionThreshold)
}

func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
