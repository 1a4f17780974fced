package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/ntarasov/finchat/internal/domain"
)

// Mirror writes one Notion page per recorded transaction.
type Mirror struct {
	client     NotionService
	databaseID string
}

// NewMirror creates a mirror bound to one Notion database.
func NewMirror(client NotionService, databaseID string) *Mirror {
	return &Mirror{client: client, databaseID: databaseID}
}

// MirrorTransaction creates the ledger page for the transaction and
// returns the created page ID.
func (m *Mirror) MirrorTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	props := TransactionToNotionProperties(tx)

	page, err := m.client.CreatePage(ctx, m.databaseID, props)
	if err != nil {
		return "", fmt.Errorf("MirrorTransaction: %w", err)
	}

	return string(page.ID), nil
}

// TransactionToNotionProperties converts a transaction to the ledger
// database schema: Description (title), Transaction ID, Date, Type,
// Amount, Currency, Category, User.
func TransactionToNotionProperties(tx *domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					day := tx.RecordedAt
					if day.IsZero() {
						day = time.Now().UTC()
					}
					d := notionapi.Date(day)
					return &d
				}(),
			},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: domain.RoundAmount(tx.Amount),
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		},
	}

	if tx.Currency != "" {
		props["Currency"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Currency,
			},
		}
	}

	if tx.UserID != "" {
		props["User"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.UserID,
					},
				},
			},
		}
	}

	return props
}
