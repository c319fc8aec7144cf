package repository

import (
	"database/sql"

	"github.com/behrang/sqlbatch"
)

var (
	BatchOptionNormal = sql.TxOptions{
		ReadOnly:  false,
		Isolation: sql.LevelReadCommitted,
	}

	BatchOptionNormalReadOnly = sql.TxOptions{
		ReadOnly:  true,
		Isolation: sql.LevelReadCommitted,
	}

	BatchOptionSerializable = sql.TxOptions{
		ReadOnly:  false,
		Isolation: sql.LevelSerializable,
	}
)

// Schema creates the tables the repositories use. The statements are valid for
// both Postgres and SQLite.
var Schema = []string{
	`create table if not exists memos (
		key     text primary key,
		memo    text not null,
		version bigint not null default 0
	)`,
	`create table if not exists records (
		id          text primary key,
		kind        text not null,
		account     text not null default '',
		recipient   text not null default '',
		amount      text not null,
		shares      text not null,
		net_change  text not null default '',
		allocations text not null default '[]',
		fees        text not null default '[]',
		share_price text not null,
		create_time bigint not null
	)`,
	`create index if not exists records_account_idx on records (account, create_time)`,
	`create index if not exists records_recipient_idx on records (recipient, create_time)`,
}

// BatchHandler is a database handler that executes a batch of SQL commands.
type BatchHandler interface {
	Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error)
}
