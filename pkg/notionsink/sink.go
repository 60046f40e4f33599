package notionsink

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Sink upserts verified contacts into one Notion database, keyed by email.
type Sink struct {
	client Client
	dbID   string
}

// NewSink creates a Sink writing to the given database.
func NewSink(client Client, dbID string) *Sink {
	return &Sink{client: client, dbID: dbID}
}

// PushContacts upserts every resolved contact. Unresolved contacts are
// skipped. Returns the number of pages created or updated.
func (s *Sink) PushContacts(ctx context.Context, domain string, contacts []*model.Contact) (int, error) {
	pushed := 0
	for _, c := range contacts {
		if !c.Resolved() {
			continue
		}
		if err := s.upsert(ctx, domain, c); err != nil {
			return pushed, eris.Wrapf(err, "notionsink: push %s", c.Email)
		}
		pushed++
	}
	zap.L().Info("contacts pushed to notion",
		zap.String("domain", domain),
		zap.Int("pushed", pushed),
	)
	return pushed, nil
}

func (s *Sink) upsert(ctx context.Context, domain string, c *model.Contact) error {
	existing, err := s.findByEmail(ctx, c.Email)
	if err != nil {
		return err
	}

	props := s.properties(domain, c)
	if existing != "" {
		_, err = s.client.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{Properties: props})
		return err
	}

	_, err = s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(s.dbID)},
		Properties: props,
	})
	return err
}

// findByEmail returns the page ID holding this address, or "" when absent.
func (s *Sink) findByEmail(ctx context.Context, email string) (string, error) {
	resp, err := s.client.QueryDatabase(ctx, s.dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Email",
			RichText: &notionapi.TextFilterCondition{Equals: email},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

func (s *Sink) properties(domain string, c *model.Contact) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(c.FullName),
		},
		"Email": notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: c.Email,
		},
		"Domain": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(domain),
		},
		"Email Source": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(c.EmailSource)},
		},
		"Priority": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(c.PriorityScore),
		},
		"Relevance": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(c.RelevanceScore),
		},
	}
	if c.JobTitle != "" {
		props["Title"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(c.JobTitle),
		}
	}
	if c.LinkedInURL != "" {
		props["LinkedIn"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  c.LinkedInURL,
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}
