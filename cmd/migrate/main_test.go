package main

import (
	"strings"
	"testing"
)

func TestChatTransactionsDDL(t *testing.T) {
	sql := chatTransactionsDDL("my-project", "finance")

	if !strings.Contains(sql, "`my-project.finance.chat_transactions`") {
		t.Errorf("DDL missing qualified table name:\n%s", sql)
	}
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS") {
		t.Error("DDL is not idempotent")
	}

	for _, col := range []string{
		"transaction_id", "user_id", "job_id", "transaction_date",
		"tx_type", "amount", "currency", "category", "description",
		"source", "snapshot_uri", "created_ts",
	} {
		if !strings.Contains(sql, col) {
			t.Errorf("DDL missing column %q", col)
		}
	}
}
