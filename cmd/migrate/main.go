// Command migrate bootstraps the BigQuery schema: it creates the
// dataset when missing and ensures the chat_transactions table exists.
// Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/bigquery"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", "finance", "BigQuery dataset ID")
	location  = flag.String("location", "EU", "Dataset location used on creation")
)

func main() {
	flag.Parse()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	if err := ensureDataset(ctx, client); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	if err := runDDL(ctx, client, chatTransactionsDDL(*projectID, *datasetID)); err != nil {
		log.Fatalf("Failed to ensure chat_transactions table: %v", err)
	}

	log.Println("Schema is up to date.")
}

func ensureDataset(ctx context.Context, client *bigquery.Client) error {
	meta := &bigquery.DatasetMetadata{Location: *location}
	err := client.Dataset(*datasetID).Create(ctx, meta)
	if err == nil {
		log.Printf("Created dataset %s", *datasetID)
		return nil
	}
	if strings.Contains(err.Error(), "Already Exists") || strings.Contains(err.Error(), "duplicate") {
		return nil
	}
	return fmt.Errorf("creating dataset: %w", err)
}

// chatTransactionsDDL renders the table definition. The columns mirror
// the TransactionRow type in internal/infra/bigquery.
func chatTransactionsDDL(project, dataset string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s.%s.chat_transactions`"+` (
			transaction_id   STRING NOT NULL,
			user_id          STRING,
			job_id           STRING,
			transaction_date DATE NOT NULL,
			tx_type          STRING NOT NULL,
			amount           NUMERIC NOT NULL,
			currency         STRING NOT NULL,
			category         STRING NOT NULL,
			description      STRING NOT NULL,
			source           STRING,
			snapshot_uri     STRING,
			created_ts       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP()
		)
		PARTITION BY transaction_date
	`, project, dataset)
}

func runDDL(ctx context.Context, client *bigquery.Client, sql string) error {
	query := client.Query(sql)
	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
