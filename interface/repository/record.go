package repository

import (
	"encoding/json"
	"time"

	"vault/domain"

	"github.com/behrang/sqlbatch"
)

const (
	sqlRecordInsert = `
	insert into records (
			id, kind, account, recipient, amount, shares, net_change, allocations, fees, share_price, create_time
		)
		values (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
`

	sqlRecordFindLatest = `
	select
		id, kind, account, recipient, amount, shares, net_change, allocations, fees, share_price, create_time
	from records
	order by create_time desc, id
	limit $1
`

	sqlRecordFindByAccount = `
	select
		id, kind, account, recipient, amount, shares, net_change, allocations, fees, share_price, create_time
	from records
	where account = $1 or recipient = $1
	order by create_time desc, id
	limit $2
`
)

type RecordRepository struct {
	batchHandler BatchHandler
}

func NewRecordRepository(db BatchHandler) *RecordRepository {
	return &RecordRepository{batchHandler: db}
}

func readAllRecords(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := domain.Record{}
	var (
		account, recipient        string
		allocationsJson, feesJson string
		createTime                int64
	)
	err := scan(
		&r.ID, &r.Kind, &account, &recipient, &r.Amount, &r.Shares, &r.NetChange, &allocationsJson, &feesJson, &r.SharePrice, &createTime,
	)
	if err == nil {
		r.Account = domain.Account(account)
		r.Recipient = domain.Account(recipient)
		r.CreateTime = time.UnixMilli(createTime).UTC()
		err = json.Unmarshal([]byte(allocationsJson), &r.Allocations)
	}
	if err == nil {
		err = json.Unmarshal([]byte(feesJson), &r.Fees)
	}

	list := memo.([]domain.Record)
	list = append(list, r)
	return list, err
}

func (repo *RecordRepository) Insert(record domain.Record) error {
	allocationsJson, err := json.Marshal(nonNil(record.Allocations))
	if err != nil {
		return err
	}
	feesJson, err := json.Marshal(nonNil(record.Fees))
	if err != nil {
		return err
	}

	_, err = repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: sqlRecordInsert,
			Args: []interface{}{
				record.ID, record.Kind, string(record.Account), string(record.Recipient), record.Amount, record.Shares,
				record.NetChange, string(allocationsJson), string(feesJson), record.SharePrice, record.CreateTime.UnixMilli(),
			},
			Affect: 1,
		},
	})
	return err
}

func (repo *RecordRepository) FindLatest(limit int) ([]domain.Record, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlRecordFindLatest,
			Args:    []interface{}{limit},
			Init:    make([]domain.Record, 0),
			ReadAll: readAllRecords,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.Record)
	return result, nil
}

func (repo *RecordRepository) FindByAccount(account domain.Account, limit int) ([]domain.Record, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlRecordFindByAccount,
			Args:    []interface{}{string(account), limit},
			Init:    make([]domain.Record, 0),
			ReadAll: readAllRecords,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.Record)
	return result, nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
