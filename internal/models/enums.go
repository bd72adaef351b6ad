package models

type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyBimonthly PaymentFrequency = "bimonthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
)

func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyBimonthly, FrequencyQuarterly:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeCredit PaymentType = "credit"
	PaymentTypeDebit  PaymentType = "debit"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeCredit || t == PaymentTypeDebit
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPending PaymentStatus = "PENDING"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusPending:
		return true
	}
	return false
}

type SourceType string

const (
	SourceVehicle         SourceType = "vehicle"
	SourceOutsideInterest SourceType = "outside_interest"
	SourceLoan            SourceType = "loan"
	SourceChit            SourceType = "chit"
	SourceOther           SourceType = "other"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceVehicle, SourceOutsideInterest, SourceLoan, SourceChit, SourceOther:
		return true
	}
	return false
}

type LenderType string

const (
	LenderBank     LenderType = "bank"
	LenderPersonal LenderType = "personal"
	LenderOther    LenderType = "other"
)

func (t LenderType) Valid() bool {
	switch t {
	case LenderBank, LenderPersonal, LenderOther:
		return true
	}
	return false
}
