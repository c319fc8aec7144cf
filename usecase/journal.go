package usecase

import (
	"vault/domain"

	log "github.com/sirupsen/logrus"
)

// RecordRepository stores the operation journal.
type RecordRepository interface {
	Insert(record domain.Record) error
	FindLatest(limit int) ([]domain.Record, error)
	FindByAccount(account domain.Account, limit int) ([]domain.Record, error)
}

// JournalInteractor keeps the record of every vault operation.
type JournalInteractor struct {
	recordRepository RecordRepository
}

func NewJournalInteractor(recordRepository RecordRepository) *JournalInteractor {
	return &JournalInteractor{
		recordRepository: recordRepository,
	}
}

func (interactor *JournalInteractor) Record(record domain.Record) error {
	err := interactor.recordRepository.Insert(record)
	if err != nil {
		log.Errorf("🔴 inserting %v record - %v", record.Kind, err.Error())
	}
	return err
}

func (interactor *JournalInteractor) History(account domain.Account, limit int) ([]domain.Record, error) {
	var (
		records []domain.Record
		err     error
	)
	if account == "" {
		records, err = interactor.recordRepository.FindLatest(limit)
	} else {
		records, err = interactor.recordRepository.FindByAccount(account, limit)
	}
	if err != nil {
		log.Errorf("🔴 loading records - %v", err.Error())
		return nil, err
	}
	return records, nil
}
