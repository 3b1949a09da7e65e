package api

// FamilyScoped is implemented by requests that act on a single family.
type FamilyScoped interface {
	GetFamilyKey() string
}

func (x *GetFamilyRequest) GetFamilyKey() string {
	if x != nil {
		return x.FamilyKey
	}
	return ""
}

func (x *PayOneMonthRequest) GetFamilyKey() string {
	if x != nil {
		return x.FamilyKey
	}
	return ""
}

func (x *PayFullYearRequest) GetFamilyKey() string {
	if x != nil {
		return x.FamilyKey
	}
	return ""
}

func (x *DistributeDepositRequest) GetFamilyKey() string {
	if x != nil {
		return x.FamilyKey
	}
	return ""
}

func (x *ReverseMonthRequest) GetFamilyKey() string {
	if x != nil {
		return x.FamilyKey
	}
	return ""
}

// RecordCounter is implemented by responses that wrote or removed payment records.
type RecordCounter interface {
	RecordCount() int
}

func (x *BatchResponse) RecordCount() int {
	if x == nil {
		return 0
	}
	return len(x.Created)
}

func (x *DistributeDepositResponse) RecordCount() int {
	if x == nil {
		return 0
	}
	return len(x.Batch.Created)
}

func (x *ReverseMonthResponse) RecordCount() int {
	if x == nil {
		return 0
	}
	return len(x.Deleted)
}
