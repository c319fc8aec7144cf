package repository

import (
	"vault/domain"

	"github.com/behrang/sqlbatch"
)

const (
	sqlMemoCreate = `
	insert into memos (
			key, memo, version
		)
		values (
			$1, $2, 1
		)
	on conflict (key) do nothing
	returning
		key, memo, version
`

	sqlMemoUpdate = `
	update memos
	set
		memo = $2,
		version = version + 1
	where key = $1 and version = $3
	returning
		key, memo, version
`

	sqlMemoFind = `
	select
		key, memo, version
	from memos
	where key = $1
`
)

type MemoRepository struct {
	batchHandler BatchHandler
}

func NewMemoRepository(db BatchHandler) *MemoRepository {
	return &MemoRepository{batchHandler: db}
}

func readAllMemos(all interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := domain.Memo{}
	var jstr string
	err := scan(
		&r.Key, &jstr, &r.Version,
	)
	if err == nil {
		r.Memo = jstr
	}

	list := all.([]domain.Memo)
	list = append(list, r)
	return list, err
}

// Save writes the memo only if the stored version still is the given one; 0
// means the key must not exist yet. A lost race returns
// domain.ErrorSnapshotConflict.
func (repo *MemoRepository) Save(key string, memo domain.Memorable, version int64) (*domain.Memo, error) {

	jstr := memo.ToJson()
	command := sqlbatch.Command{
		Query:   sqlMemoUpdate,
		Args:    []interface{}{key, jstr, version},
		Init:    make([]domain.Memo, 0, 1),
		ReadAll: readAllMemos,
	}
	if version == 0 {
		command.Query = sqlMemoCreate
		command.Args = []interface{}{key, jstr}
	}

	results, err := repo.batchHandler.Batch(&BatchOptionSerializable, []sqlbatch.Command{command})
	if err != nil {
		return nil, err
	}

	saved := firstMemo(results[0])
	if saved == nil {
		return nil, domain.ErrorSnapshotConflict
	}
	return saved, nil
}

// Find returns nil without an error when the key was never written.
func (repo *MemoRepository) Find(key string) (*domain.Memo, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlMemoFind,
			Args:    []interface{}{key},
			Init:    make([]domain.Memo, 0, 1),
			ReadAll: readAllMemos,
		},
	})
	if err != nil {
		return nil, err
	}
	return firstMemo(results[0]), nil
}

func firstMemo(result interface{}) *domain.Memo {
	list, _ := result.([]domain.Memo)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}
