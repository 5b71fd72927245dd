package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jomei/notionapi"
)

// NotionClipper logs published days to a Notion database
type NotionClipper struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
}

// NewNotionClipper creates a new Notion clipper
func NewNotionClipper(token string, databaseID string) (*NotionClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}

	client := notionapi.NewClient(notionapi.Token(token))

	nc := &NotionClipper{
		client: client,
	}

	if databaseID != "" {
		nc.dbID = notionapi.DatabaseID(databaseID)
	}

	return nc, nil
}

// CreateDatabase creates a new Notion database for the publish log
// and returns its ID.
func (nc *NotionClipper) CreateDatabase(ctx context.Context, pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("NOTION_PAGE_ID is required to create a new database")
	}

	dbRequest := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(pageID),
		},
		Title: []notionapi.RichText{
			{
				Text: &notionapi.Text{
					Content: "Daily English Publish Log",
				},
			},
		},
		Properties: notionapi.PropertyConfigs{
			"Title": notionapi.TitlePropertyConfig{
				Type: notionapi.PropertyConfigTypeTitle,
			},
			"Date": notionapi.DatePropertyConfig{
				Type: notionapi.PropertyConfigTypeDate,
			},
			"Page": notionapi.URLPropertyConfig{
				Type: notionapi.PropertyConfigTypeURL,
			},
			"Headline": notionapi.RichTextPropertyConfig{
				Type: notionapi.PropertyConfigTypeRichText,
			},
			"Fallback": notionapi.CheckboxPropertyConfig{
				Type: notionapi.PropertyConfigTypeCheckbox,
			},
		},
	}

	db, err := nc.client.Database.Create(ctx, dbRequest)
	if err != nil {
		return "", fmt.Errorf("failed to create Notion database: %w", err)
	}

	nc.dbID = notionapi.DatabaseID(db.ID)
	fmt.Fprintf(os.Stderr, "✅ Notion database created: %s\n", db.ID)
	fmt.Fprintf(os.Stderr, "   Database URL: https://notion.so/%s\n", db.ID)

	return string(db.ID), nil
}

// ClipPublishedDay records one publish run in the Notion database.
// pageURL is the public URL of the day page (may be empty when the
// site URL is not configured).
func (nc *NotionClipper) ClipPublishedDay(ctx context.Context, res *PublishResult, pageURL string) error {
	if nc.dbID == "" {
		return fmt.Errorf("database ID not set")
	}

	published, err := time.Parse("2006-01-02", res.Date)
	if err != nil {
		return fmt.Errorf("invalid publish date %q: %w", res.Date, err)
	}
	start := notionapi.Date(published)

	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{
					Text: &notionapi.Text{
						Content: res.Title,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{
				Start: &start,
			},
		},
		"Headline": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{
					Text: &notionapi.Text{
						Content: truncateString(res.Headline, 2000), // Notion limit
					},
				},
			},
		},
		"Fallback": notionapi.CheckboxProperty{
			Type:     notionapi.PropertyTypeCheckbox,
			Checkbox: res.UsedFallback,
		},
	}

	if pageURL != "" {
		properties["Page"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  pageURL,
		}
	}

	pageRequest := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nc.dbID,
		},
		Properties: properties,
	}

	_, err = nc.client.Page.Create(ctx, pageRequest)
	if err != nil {
		return fmt.Errorf("failed to clip published day: %w", err)
	}

	return nil
}
