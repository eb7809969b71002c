package chat

import (
	"fmt"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
)

// Block types understood by the chat workspace.
const (
	BlockHeader  = "header"
	BlockSection = "section"
	BlockActions = "actions"
)

// Text is a formatted text object.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func plainText(s string) *Text { return &Text{Type: "plain_text", Text: s, Emoji: true} }
func markdown(s string) *Text  { return &Text{Type: "mrkdwn", Text: s} }

// Button is an interactive element inside an actions block.
type Button struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text"`
	Value    string `json:"value"`
	ActionID string `json:"action_id"`
}

// Block is a single element of a rich chat message.
type Block struct {
	Type     string   `json:"type"`
	Text     *Text    `json:"text,omitempty"`
	Fields   []*Text  `json:"fields,omitempty"`
	Elements []Button `json:"elements,omitempty"`
}

// FormatPathologyAlert lays out a critical result as a header, two field
// rows, the findings description and the follow-up buttons.
func FormatPathologyAlert(r *pathology.Report) []Block {
	return []Block{
		{
			Type: BlockHeader,
			Text: plainText(fmt.Sprintf("🚨 Critical Pathology Result: %s", r.Status)),
		},
		{
			Type: BlockSection,
			Fields: []*Text{
				markdown(fmt.Sprintf("*Patient ID:*\n%s", r.PatientID)),
				markdown(fmt.Sprintf("*Severity:*\n%s", r.Severity)),
			},
		},
		{
			Type: BlockSection,
			Fields: []*Text{
				markdown(fmt.Sprintf("*Doctor:*\n%s", r.Doctor)),
				markdown(fmt.Sprintf("*Hospital:*\n%s", r.Hospital)),
			},
		},
		{
			Type: BlockSection,
			Text: markdown(fmt.Sprintf("*Description:*\n%s", r.Findings.Description)),
		},
		{
			Type: BlockActions,
			Elements: []Button{
				{
					Type:     "button",
					Text:     plainText("View Patient Record"),
					Value:    "view_patient_" + r.PatientID,
					ActionID: "view_patient",
				},
				{
					Type:     "button",
					Text:     plainText("View Workflow Status"),
					Value:    "view_workflow_" + r.PatientID,
					ActionID: "view_workflow",
				},
			},
		},
	}
}
