package render

import (
	"bytes"
	"fmt"

	"kvorum/contexts/governance/voting-engine/domain/entities"
)

// TextRenderer produces plain-text sheet representations. The engine stores
// bytes plus a content type, so swapping in a PDF renderer later is an
// adapter change only.
type TextRenderer struct{}

func (TextRenderer) RenderOriginal(protocol entities.Protocol, association entities.Association) (entities.Artifact, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s)\n", association.Name, association.ShortName)
	fmt.Fprintf(&buf, "EDRPOU %s, %s\n\n", association.Edrpou, association.Address)
	fmt.Fprintf(&buf, "Decision sheet for protocol %s of %s (%s)\n",
		protocol.Number, protocol.Date.Format("2006-01-02"), protocol.Type)
	fmt.Fprintf(&buf, "Organizer: %s\n\n", association.OrganizerName)

	for _, question := range protocol.Questions {
		rule := "simple majority"
		if question.RequiresTwoThirds {
			rule = "two-thirds majority"
		}
		fmt.Fprintf(&buf, "%d. %s\n", question.OrderNumber, question.Text)
		fmt.Fprintf(&buf, "   Proposal: %s\n", question.Proposal)
		fmt.Fprintf(&buf, "   Decision rule: %s\n", rule)
		fmt.Fprintf(&buf, "   [ ] FOR   [ ] AGAINST\n\n")
	}

	return entities.Artifact{
		FileName:    fmt.Sprintf("sheet-%s-original.txt", protocol.Number),
		ContentType: "text/plain; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func (TextRenderer) RenderVisualization(
	protocol entities.Protocol,
	association entities.Association,
	results []entities.QuestionResult,
) (entities.Artifact, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s — voting results, protocol %s of %s\n\n",
		association.Name, protocol.Number, protocol.Date.Format("2006-01-02"))

	for _, result := range results {
		text := ""
		if question, ok := protocol.QuestionByID(result.QuestionID); ok {
			text = question.Text
		}
		verdict := "NOT ADOPTED"
		if result.Passed {
			verdict = "ADOPTED"
		}
		fmt.Fprintf(&buf, "%d. %s\n", result.OrderNumber, text)
		fmt.Fprintf(&buf, "   FOR: %d  AGAINST: %d  => %s\n\n",
			result.ForCount, result.AgainstCount, verdict)
	}

	return entities.Artifact{
		FileName:    fmt.Sprintf("sheet-%s-results.txt", protocol.Number),
		ContentType: "text/plain; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}
