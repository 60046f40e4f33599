// Package outreach drafts and sends personalized first-touch emails for
// resolved contacts.
package outreach

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/claude"
)

// Company carries the context fed into the drafting prompt.
type Company struct {
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Summary string   `json:"summary,omitempty"`
	Hooks   []string `json:"hooks,omitempty"`
}

// Identity is the sender persona appended to every draft.
type Identity struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Title     string `yaml:"title" mapstructure:"title"`
	Signature string `yaml:"signature" mapstructure:"signature"`
	Offer     string `yaml:"offer" mapstructure:"offer"`
}

// Drafter generates cold-email drafts for one contact at a time. A failed
// model call never fails the batch: the drafter falls back to a plain
// template and marks the draft accordingly.
type Drafter struct {
	client   claude.Client
	model    string
	identity Identity
	titler   cases.Caser
	usage    claude.TokenUsage
}

// NewDrafter creates a Drafter. client may be nil, in which case every
// draft uses the fallback template.
func NewDrafter(client claude.Client, model string, identity Identity) *Drafter {
	return &Drafter{
		client:   client,
		model:    model,
		identity: identity,
		titler:   cases.Title(language.English),
	}
}

const draftMaxTokens = 700

// draftSystem is the static writing brief shared by every draft in a batch,
// sent as a cached system block so repeat calls hit the prompt cache.
const draftSystem = "You write one-to-one, personalised first cold emails with a subject line. " +
	"Confident, helpful, conversational. No spammy vibe, no buzzwords, no hard sell. " +
	"Keep the body under 120 words and never invent facts about the company."

// Draft produces a subject and body for one contact.
func (d *Drafter) Draft(ctx context.Context, contact *model.Contact, company Company) (*model.OutreachDraft, error) {
	if d.client == nil {
		return d.fallback(contact, company), nil
	}

	temp := 0.65
	resp, err := d.client.CreateMessage(ctx, claude.MessageRequest{
		Model:       d.model,
		MaxTokens:   draftMaxTokens,
		Temperature: &temp,
		System: []claude.SystemBlock{
			{Text: draftSystem, CacheControl: &claude.CacheControl{TTL: "5m"}},
		},
		Messages: []claude.Message{
			{Role: "user", Content: d.prompt(contact, company)},
		},
	})
	if err != nil {
		zap.L().Warn("draft generation failed, using template",
			zap.String("contact", contact.FullName),
			zap.Error(err),
		)
		return d.fallback(contact, company), nil
	}
	resp.Usage.Log(d.model, "outreach_draft")
	d.usage.InputTokens += resp.Usage.InputTokens
	d.usage.OutputTokens += resp.Usage.OutputTokens
	d.usage.CacheCreationInputTokens += resp.Usage.CacheCreationInputTokens
	d.usage.CacheReadInputTokens += resp.Usage.CacheReadInputTokens

	subject, body := parseDraft(resp.Text())
	if body == "" {
		return d.fallback(contact, company), nil
	}
	if subject == "" {
		subject = fmt.Sprintf("Quick question for %s", company.Name)
	}

	return &model.OutreachDraft{
		Contact:   *contact,
		Subject:   subject,
		Body:      formatBody(body),
		DraftedAt: time.Now().UTC(),
	}, nil
}

// Usage returns the token totals accumulated across this drafter's calls.
func (d *Drafter) Usage() claude.TokenUsage {
	return d.usage
}

// greeting returns the contact's first name in title case, or "there".
func (d *Drafter) greeting(contact *model.Contact) string {
	if contact.FirstName == "" {
		return "there"
	}
	return d.titler.String(strings.ToLower(contact.FirstName))
}

func (d *Drafter) prompt(contact *model.Contact, company Company) string {
	var b strings.Builder
	b.WriteString("INPUTS:\n")
	fmt.Fprintf(&b, "Target Name: %s\n", contact.FullName)
	fmt.Fprintf(&b, "Target Job Title: %s\n", contact.JobTitle)
	fmt.Fprintf(&b, "Company Name: %s\n", company.Name)
	fmt.Fprintf(&b, "Company Website: %s\n", company.URL)
	if company.Summary != "" {
		fmt.Fprintf(&b, "Website Summary: %s\n", company.Summary)
	}
	if len(company.Hooks) > 0 {
		fmt.Fprintf(&b, "Personal Hooks: %s\n", strings.Join(company.Hooks, "; "))
	}
	fmt.Fprintf(&b, "Offer Summary: %s\n", d.identity.Offer)
	b.WriteString("\nOUTPUT FORMAT (use exactly):\n")
	b.WriteString("Subject Line: <3-7 words, curiosity/value-driven>\n\n")
	b.WriteString("Body:\n")
	fmt.Fprintf(&b, "Hi %s,\n\n", d.greeting(contact))
	b.WriteString("[custom hook from the company info]\n\n")
	b.WriteString("[one-sentence outcome]\n\n")
	b.WriteString("[one-sentence soft CTA]\n\n")
	fmt.Fprintf(&b, "Regards,\n\n%s\n%s\n\n%s\n", d.identity.Name, d.identity.Title, d.identity.Signature)
	return b.String()
}

// fallback builds a plain template draft when the model is unavailable.
func (d *Drafter) fallback(contact *model.Contact, company Company) *model.OutreachDraft {
	name := company.Name
	if name == "" {
		name = "your business"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nI came across %s and thought it was worth reaching out.\n\n%s\n\nWorth a brief chat to see if we can help?\n\nRegards,\n\n%s\n%s\n\n%s",
		d.greeting(contact), name, d.identity.Offer,
		d.identity.Name, d.identity.Title, d.identity.Signature,
	)
	return &model.OutreachDraft{
		Contact:   *contact,
		Subject:   fmt.Sprintf("Quick question for %s", name),
		Body:      formatBody(body),
		Fallback:  true,
		DraftedAt: time.Now().UTC(),
	}
}

var subjectLineRe = regexp.MustCompile(`(?im)^subject line:.*\n?`)

// parseDraft splits the model output into subject and body. The body is
// everything after the "Body:" marker, or the whole text when the marker is
// missing.
func parseDraft(text string) (subject, body string) {
	var bodyLines []string
	inBody := false

	for _, ln := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(ln)
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "subject line:") {
			if subject == "" {
				_, after, _ := strings.Cut(trimmed, ":")
				subject = strings.Trim(strings.TrimSpace(after), `'"`)
			}
			continue
		}
		if lower == "body:" {
			inBody = true
			continue
		}
		if inBody {
			bodyLines = append(bodyLines, ln)
		}
	}

	body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if body == "" {
		body = strings.TrimSpace(subjectLineRe.ReplaceAllString(text, ""))
	}
	return subject, body
}

var multiNewlineRe = regexp.MustCompile(`\n{3,}`)

// formatBody normalizes model output into plain professional prose: dashes
// become commas and runs of blank lines collapse.
func formatBody(body string) string {
	body = subjectLineRe.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "—", ",")
	body = strings.ReplaceAll(body, "–", ",")
	body = multiNewlineRe.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}
